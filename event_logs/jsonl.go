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
package event_logs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Velocidex/json"
	"github.com/Velocidex/ordereddict"
	"github.com/araddon/dateparse"
	"github.com/go-errors/errors"
)

const (
	max_line_length = 10 * 1024 * 1024
)

// One exported event per line.
type jsonlEvent struct {
	EventID    int      `json:"EventID"`
	RecordID   uint64   `json:"RecordID,omitempty"`
	Timestamp  string   `json:"Timestamp"`
	SourceName string   `json:"SourceName"`
	Fields     []string `json:"Fields,omitempty"`
}

// Replays events exported one JSON object per line. The lines must
// already be newest first.
type JsonlSource struct {
	fd      io.ReadCloser
	scanner *bufio.Scanner
	path    string
	line    int
}

func NewJsonlSource(fd io.ReadCloser, path string) *JsonlSource {
	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 0, 64*1024), max_line_length)

	return &JsonlSource{
		fd:      fd,
		scanner: scanner,
		path:    path,
	}
}

func (self *JsonlSource) Next(ctx context.Context) (*RawEvent, error) {
	for {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		if !self.scanner.Scan() {
			err := self.scanner.Err()
			if err != nil {
				return nil, errors.Wrap(err, 0)
			}
			return nil, io.EOF
		}
		self.line++

		line := strings.TrimSpace(self.scanner.Text())
		if line == "" {
			continue
		}

		event, err := decodeJsonlEvent([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", self.path, self.line, err)
		}
		return event, nil
	}
}

func (self *JsonlSource) Close() error {
	return self.fd.Close()
}

func decodeJsonlEvent(line []byte) (*RawEvent, error) {
	item := &jsonlEvent{}
	err := json.Unmarshal(line, item)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	if item.Timestamp == "" {
		return nil, errors.New("event has no Timestamp")
	}

	timestamp, err := dateparse.ParseIn(item.Timestamp, time.UTC)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	result := &RawEvent{
		EventID:    item.EventID,
		RecordID:   item.RecordID,
		Timestamp:  timestamp.UTC(),
		SourceName: item.SourceName,
		Fields:     item.Fields,
	}

	// Named fields are optional. Decoding into a dict keeps them
	// in the order they were exported.
	if bytes.Contains(line, []byte(`"EventData"`)) {
		raw := ordereddict.NewDict()
		err = json.Unmarshal(line, raw)
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
		data, _ := raw.Get("EventData")
		result.Named, _ = eventData(data)
	}

	return result, nil
}

func OpenJsonl(ctx context.Context, spec SourceSpec) (Source, error) {
	if spec.Path == "" || spec.Path == "-" {
		return NewJsonlSource(io.NopCloser(os.Stdin), "stdin"), nil
	}

	fd, err := os.Open(spec.Path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return NewJsonlSource(fd, spec.Path), nil
}

func init() {
	RegisterOpener("jsonl", OpenJsonl)
}
