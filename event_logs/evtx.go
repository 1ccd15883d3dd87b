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
	"context"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/araddon/dateparse"
	"github.com/go-errors/errors"
	"www.velocidex.com/golang/evtx"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/utils"
)

type chunkRecord struct {
	RecordID uint64
	Event    interface{}
}

// A chunk of the log which is only parsed when the reader gets to
// it.
type recordChunk interface {
	LastRecordID() uint64
	Records() ([]*chunkRecord, error)
}

type evtxChunk struct {
	chunk *evtx.Chunk
}

func (self evtxChunk) LastRecordID() uint64 {
	return uint64(self.chunk.Header.LastEventRecID)
}

func (self evtxChunk) Records() ([]*chunkRecord, error) {
	records, err := self.chunk.Parse(0)
	result := make([]*chunkRecord, 0, len(records))
	for _, record := range records {
		result = append(result, &chunkRecord{
			RecordID: uint64(record.Header.RecordID),
			Event:    record.Event,
		})
	}
	return result, err
}

// The file is a ring buffer so file order says nothing about
// age. Chunks are ordered by the newest record they hold.
func sortChunks(chunks []recordChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].LastRecordID() > chunks[j].LastRecordID()
	})
}

func sortRecords(records []*chunkRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordID > records[j].RecordID
	})
}

// Reads an evtx file backwards. Chunks are visited from the newest
// to the oldest and each chunk is only parsed when reached.
type EvtxSource struct {
	closer  io.Closer
	path    string
	chunks  []recordChunk
	next    int
	pending []*chunkRecord
}

func (self *EvtxSource) Next(ctx context.Context) (*RawEvent, error) {
	for {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		if len(self.pending) > 0 {
			record := self.pending[0]
			self.pending = self.pending[1:]

			event, ok := eventFromRecord(record.Event, record.RecordID)
			if !ok {
				continue
			}
			return event, nil
		}

		if self.next >= len(self.chunks) {
			return nil, io.EOF
		}

		idx := self.next
		self.next++

		// A damaged chunk still yields the records before the
		// damage.
		records, err := self.chunks[idx].Records()
		if err != nil {
			logger := logging.GetLogger(nil, &logging.ScanComponent)
			logger.Warn("evtx: %v: chunk %v: %v", self.path, idx, err)
		}
		sortRecords(records)
		self.pending = records
	}
}

func (self *EvtxSource) Close() error {
	if self.closer == nil {
		return nil
	}
	return self.closer.Close()
}

func newEvtxSource(path string, chunks []recordChunk,
	closer io.Closer) *EvtxSource {
	sortChunks(chunks)
	return &EvtxSource{closer: closer, path: path, chunks: chunks}
}

func OpenEvtx(ctx context.Context, spec SourceSpec) (Source, error) {
	if spec.Path == "" {
		return nil, errors.New("evtx: no event log path configured")
	}

	fd, err := os.Open(spec.Path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	chunks, err := evtx.GetChunks(fd)
	if err != nil {
		fd.Close()
		return nil, errors.Wrap(err, 0)
	}

	wrapped := make([]recordChunk, 0, len(chunks))
	for _, chunk := range chunks {
		wrapped = append(wrapped, evtxChunk{chunk: chunk})
	}

	return newEvtxSource(spec.Path, wrapped, fd), nil
}

// Converts a parsed record into a RawEvent. Parsers hand back the
// record either as an ordered dict or a plain map.
func eventFromRecord(record interface{}, record_id uint64) (*RawEvent, bool) {
	root, pres := utils.GetPath(record, "Event")
	if !pres {
		return nil, false
	}

	event_id, pres := utils.GetInt64(root, "System.EventID.Value")
	if !pres {
		event_id, pres = utils.GetInt64(root, "System.EventID")
	}
	if !pres {
		return nil, false
	}

	timestamp, pres := parseSystemTime(root)
	if !pres {
		return nil, false
	}

	result := &RawEvent{
		EventID:    int(event_id),
		RecordID:   record_id,
		Timestamp:  timestamp,
		SourceName: utils.GetString(root, "System.Provider.Name"),
	}

	data, pres := utils.GetPath(root, "EventData")
	if pres {
		result.Named, result.Fields = eventData(data)
	}

	return result, true
}

func parseSystemTime(root interface{}) (time.Time, bool) {
	value, pres := utils.GetPath(root, "System.TimeCreated.SystemTime")
	if !pres {
		return time.Time{}, false
	}

	switch t := value.(type) {
	case time.Time:
		return t.UTC(), true

	case string:
		ts, err := dateparse.ParseIn(t, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC(), true
	}

	seconds, pres := utils.GetFloat64(root, "System.TimeCreated.SystemTime")
	if !pres {
		return time.Time{}, false
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), true
}

// Only ordered data carries meaningful positions, so Fields is
// only populated in that case.
func eventData(data interface{}) (*ordereddict.Dict, []string) {
	switch t := data.(type) {
	case *ordereddict.Dict:
		if t == nil {
			return nil, nil
		}
		named := ordereddict.NewDict()
		fields := make([]string, 0, t.Len())
		for _, k := range t.Keys() {
			value, _ := t.Get(k)
			str_value := utils.ToString(value)
			named.Set(k, str_value)
			fields = append(fields, str_value)
		}
		return named, fields

	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		named := ordereddict.NewDict()
		for _, k := range keys {
			named.Set(k, utils.ToString(t[k]))
		}
		return named, nil
	}

	return nil, nil
}

func init() {
	RegisterOpener("evtx", OpenEvtx)
}
