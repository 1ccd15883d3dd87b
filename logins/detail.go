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
package logins

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"www.velocidex.com/golang/triage/utils"
)

type RecordWriter interface {
	Write(record *LogonFailureRecord) error
}

// Writes the detail CSV through a single handle held for the run.
// Every row is flushed so a crash loses at most the report.
type DetailWriter struct {
	fd     *os.File
	writer *csv.Writer
	loc    *time.Location
	rows   int
}

func (self *DetailWriter) Write(record *LogonFailureRecord) error {
	err := self.writer.Write(record.ToRow(self.loc))
	if err != nil {
		return errors.Wrap(err, 0)
	}
	self.writer.Flush()
	err = self.writer.Error()
	if err != nil {
		return errors.Wrap(err, 0)
	}
	self.rows++
	return nil
}

func (self *DetailWriter) Rows() int {
	return self.rows
}

func (self *DetailWriter) Close() error {
	self.writer.Flush()
	err := self.writer.Error()
	close_err := self.fd.Close()
	if err == nil {
		err = close_err
	}
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// Creates the detail CSV, replacing any stale file left by an
// earlier run on the same day, and writes the header.
func NewDetailWriter(path string, loc *time.Location) (*DetailWriter, error) {
	err := utils.EnsureDirectory(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	result := &DetailWriter{
		fd:     fd,
		writer: csv.NewWriter(fd),
		loc:    loc,
	}

	err = result.writer.Write(DetailHeader)
	if err == nil {
		result.writer.Flush()
		err = result.writer.Error()
	}
	if err != nil {
		fd.Close()
		return nil, errors.Wrap(err, 0)
	}

	return result, nil
}
