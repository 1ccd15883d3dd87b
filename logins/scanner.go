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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-errors/errors"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/event_logs"
	"www.velocidex.com/golang/triage/logging"
)

var (
	ErrOutOfOrder = errors.New("event source is not newest first")
	ErrNoEvents   = errors.New("no matching events in window")
)

type StopReason string

const (
	StopWindow    StopReason = "window start reached"
	StopExhausted StopReason = "source exhausted"

	progress_interval = 10000
)

type ScanResult struct {
	Aggregator *Aggregator

	// Records read from the source, including rejected ones.
	Scanned int

	// Records newer than the end of the window.
	SkippedFuture int

	Newest time.Time
	Oldest time.Time

	Reason StopReason
}

// Reads the source newest first until the window start is passed.
type Scanner struct {
	filter    *Filter
	writer    RecordWriter
	tolerance time.Duration
	logger    *logging.LogContext
}

func NewScanner(config_obj *config_proto.Config,
	window Window, writer RecordWriter) *Scanner {
	return &Scanner{
		filter: &Filter{
			EventID: config_obj.Logins.EventId,
			Window:  window,
		},
		writer: writer,
		tolerance: time.Duration(
			config_obj.EventLog.OrderTolerance) * time.Second,
		logger: logging.GetLogger(config_obj, &logging.ScanComponent),
	}
}

func (self *Scanner) Scan(
	ctx context.Context, source event_logs.Source) (*ScanResult, error) {
	result := &ScanResult{Aggregator: NewAggregator()}
	window := self.filter.Window

	self.logger.Info("Parsing event logs from [%v] - [%v] for failed logins",
		window.Start, window.End)

	var previous *event_logs.RawEvent
	for {
		err := ctx.Err()
		if err != nil {
			return result, err
		}

		event, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			result.Reason = StopExhausted
			break
		}
		if err != nil {
			return result, err
		}
		result.Scanned++

		if previous != nil &&
			event.Timestamp.Sub(previous.Timestamp) > self.tolerance {
			return result, fmt.Errorf(
				"%w: record %d at %v follows record %d at %v",
				ErrOutOfOrder, event.RecordID, event.Timestamp,
				previous.RecordID, previous.Timestamp)
		}
		previous = event

		if result.Scanned%progress_interval == 0 {
			self.logger.Debug("Scanned %v records, accepted %v",
				humanize.Comma(int64(result.Scanned)),
				humanize.Comma(int64(result.Aggregator.Count)))
		}

		if event.Timestamp.Before(window.Start) {
			result.Reason = StopWindow
			break
		}

		if event.Timestamp.After(window.End) {
			result.SkippedFuture++
			continue
		}

		if !self.filter.Accept(event) {
			continue
		}

		record := BuildRecord(event)
		err = self.writer.Write(record)
		if err != nil {
			return result, err
		}
		result.Aggregator.Observe(record)

		if result.Newest.IsZero() {
			result.Newest = record.Timestamp
		}
		result.Oldest = record.Timestamp
	}

	self.logger.Info("Scan complete (%v): %v records read, %v failed logins",
		result.Reason, humanize.Comma(int64(result.Scanned)),
		humanize.Comma(int64(result.Aggregator.Count)))

	if result.SkippedFuture > 0 {
		self.logger.Warn("Skipped %v records newer than the window end",
			result.SkippedFuture)
	}

	return result, nil
}
