/*
Velociraptor - Dig Deeper
Copyright (C) 2019-2025 Rapid7 Inc.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package reputation

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/utils"
)

type Checker interface {
	Check(ctx context.Context, ip string) *Result
}

type EnrichSummary struct {
	Checked int
	Written int
	Failed  int
	Results []*Result
}

// Reads the addresses in column from a CSV file, in file order.
// Blank cells are skipped.
func ReadAddresses(path, column string) ([]string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	defer fd.Close()

	reader := csv.NewReader(fd)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Errorf("%s: reading header: %v", path, err)
	}

	idx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.Errorf("%s: no %q column", path, column)
	}

	var result []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
		if idx >= len(row) {
			continue
		}
		ip := strings.TrimSpace(row[idx])
		if ip != "" {
			result = append(result, ip)
		}
	}
}

// Appends to an existing results file. The header is only written
// when the file is new or empty.
type ResultWriter struct {
	fd     *os.File
	writer *csv.Writer
}

func (self *ResultWriter) Write(result *Result) error {
	err := self.writer.Write(result.Row())
	if err == nil {
		self.writer.Flush()
		err = self.writer.Error()
	}
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

func (self *ResultWriter) Close() error {
	self.writer.Flush()
	err := self.fd.Close()
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

func NewResultWriter(path string) (*ResultWriter, error) {
	err := utils.EnsureDirectory(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	empty, err := utils.IsEmptyFile(path)
	if err != nil {
		return nil, err
	}

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	result := &ResultWriter{fd: fd, writer: csv.NewWriter(fd)}
	if empty {
		err = result.writer.Write(ReportColumns)
		if err == nil {
			result.writer.Flush()
			err = result.writer.Error()
		}
		if err != nil {
			fd.Close()
			return nil, errors.Wrap(err, 0)
		}
	}
	return result, nil
}

// Checks every address and writes each successful lookup through to
// the output file. A quota error stops the run since every further
// lookup would fail the same way.
func Enrich(ctx context.Context,
	config_obj *config_proto.Config,
	checker Checker, addresses []string, output string) (*EnrichSummary, error) {
	logger := logging.GetLogger(config_obj, &logging.NetworkComponent)

	writer, err := NewResultWriter(output)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	summary := &EnrichSummary{}
	for _, ip := range addresses {
		err := ctx.Err()
		if err != nil {
			return summary, err
		}

		result := checker.Check(ctx, ip)
		summary.Checked++
		summary.Results = append(summary.Results, result)

		if result.Err != nil {
			if errors.Is(result.Err, ErrQuota) {
				return summary, result.Err
			}
			if utils.IsCancelled(result.Err) {
				return summary, result.Err
			}
			summary.Failed++
			logger.Error("ip_check: %v: %v", ip, result.Err)
			continue
		}

		err = writer.Write(result)
		if err != nil {
			return summary, err
		}
		summary.Written++
		logger.Info("ip_check: %v score %v", ip,
			utils.GetString(result.Value, "abuseConfidenceScore"))
	}

	return summary, nil
}
