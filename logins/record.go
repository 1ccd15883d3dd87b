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
// Package logins exports failed logon events into a spreadsheet
// with per user, per address and per day statistics.
package logins

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-errors/errors"
	"www.velocidex.com/golang/triage/constants"
)

var (
	DetailHeader = []string{
		"Date", "Event Id", "User", "Host", "Logon_Type", "Method",
		"Failure_reason", "Status", "Sub_status", "Src_ip", "Src_port",
		"Log Source",
	}
)

// One failed logon as written to the detail CSV.
type LogonFailureRecord struct {
	Timestamp     time.Time
	EventID       int
	User          string
	Host          string
	LogonType     string
	Method        string
	FailureReason string
	Status        string
	SubStatus     string
	SourceIP      string
	SourcePort    string
	LogSource     string
}

func (self *LogonFailureRecord) ToRow(loc *time.Location) []string {
	return []string{
		self.Timestamp.In(loc).Format(constants.DETAIL_TIME_FORMAT),
		strconv.Itoa(self.EventID),
		self.User,
		self.Host,
		self.LogonType,
		self.Method,
		self.FailureReason,
		self.Status,
		self.SubStatus,
		self.SourceIP,
		self.SourcePort,
		self.LogSource,
	}
}

func RecordFromRow(row []string, loc *time.Location) (*LogonFailureRecord, error) {
	if len(row) != len(DetailHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d",
			len(DetailHeader), len(row))
	}

	timestamp, err := dateparse.ParseIn(row[0], loc)
	if err != nil {
		return nil, fmt.Errorf("invalid Date %q: %w", row[0], err)
	}

	event_id, err := strconv.Atoi(row[1])
	if err != nil {
		return nil, fmt.Errorf("invalid Event Id %q: %w", row[1], err)
	}

	return &LogonFailureRecord{
		Timestamp:     timestamp,
		EventID:       event_id,
		User:          row[2],
		Host:          row[3],
		LogonType:     row[4],
		Method:        row[5],
		FailureReason: row[6],
		Status:        row[7],
		SubStatus:     row[8],
		SourceIP:      row[9],
		SourcePort:    row[10],
		LogSource:     row[11],
	}, nil
}

// Reads back a detail CSV. Dates are interpreted in loc.
func ReadDetail(path string, loc *time.Location) ([]*LogonFailureRecord, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	defer fd.Close()

	reader := csv.NewReader(fd)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: missing header", path)
		}
		return nil, errors.Wrap(err, 0)
	}
	if len(header) == 0 || header[0] != DetailHeader[0] {
		return nil, fmt.Errorf("%s: unexpected header %v", path, header)
	}

	var result []*LogonFailureRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}

		line, _ := reader.FieldPos(0)
		record, err := RecordFromRow(row, loc)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		result = append(result, record)
	}
}
