package event_logs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"www.velocidex.com/golang/triage/logging"
)

const jsonl_fixture = `{"EventID":4625,"RecordID":3,"Timestamp":"2024-03-10T10:00:00Z","SourceName":"Microsoft-Windows-Security-Auditing","Fields":["S-1-0-0","-","-","0x0","S-1-0-0","admin","WS01","0xc000006d","%%2313","0xc000006a","3","NtLmSsp"]}

{"EventID":4624,"RecordID":2,"Timestamp":"2024-03-10T09:00:00Z","SourceName":"Microsoft-Windows-Security-Auditing"}
{"EventID":4625,"RecordID":1,"Timestamp":"2024-03-10T08:00:00Z","SourceName":"Microsoft-Windows-Security-Auditing","EventData":{"TargetUserName":"bob","IpAddress":"10.0.0.7"}}
`

type EventLogsTestSuite struct {
	suite.Suite
	dir string
	ctx context.Context
}

func (self *EventLogsTestSuite) SetupTest() {
	self.dir = self.T().TempDir()
	self.ctx = context.Background()
}

func (self *EventLogsTestSuite) writeFile(name, content string) string {
	path := filepath.Join(self.dir, name)
	require.NoError(self.T(), os.WriteFile(path, []byte(content), 0600))
	return path
}

func (self *EventLogsTestSuite) readAll(source Source) []*RawEvent {
	var result []*RawEvent
	for {
		event, err := source.Next(self.ctx)
		if errors.Is(err, io.EOF) {
			return result
		}
		require.NoError(self.T(), err)
		result = append(result, event)
	}
}

func (self *EventLogsTestSuite) TestRegistry() {
	assert.Equal(self.T(), []string{"evtx", "jsonl"}, Types())

	_, err := Open(self.ctx, SourceSpec{Type: "wmi"})
	assert.True(self.T(), errors.Is(err, ErrUnknownSource))
}

func (self *EventLogsTestSuite) TestJsonl() {
	path := self.writeFile("security.jsonl", jsonl_fixture)

	source, err := Open(self.ctx, SourceSpec{Type: "jsonl", Path: path})
	require.NoError(self.T(), err)
	defer source.Close()

	events := self.readAll(source)
	require.Equal(self.T(), 3, len(events))

	first := events[0]
	assert.Equal(self.T(), 4625, first.EventID)
	assert.Equal(self.T(), uint64(3), first.RecordID)
	assert.Equal(self.T(),
		time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(self.T(), "admin", first.Field(5))
	assert.Equal(self.T(), "NtLmSsp", first.Field(11))

	// Short records never panic.
	assert.Equal(self.T(), "", first.Field(19))
	assert.Nil(self.T(), first.Named)

	assert.Equal(self.T(), 4624, events[1].EventID)

	last := events[2]
	require.NotNil(self.T(), last.Named)
	assert.ElementsMatch(self.T(), []string{"TargetUserName", "IpAddress"},
		last.Named.Keys())
	user, _ := last.Named.GetString("TargetUserName")
	assert.Equal(self.T(), "bob", user)
}

func (self *EventLogsTestSuite) TestJsonlMalformed() {
	path := self.writeFile("bad.jsonl",
		`{"EventID":4625,"Timestamp":"2024-03-10T10:00:00Z"}
{"EventID":
`)
	source, err := OpenJsonl(self.ctx, SourceSpec{Type: "jsonl", Path: path})
	require.NoError(self.T(), err)
	defer source.Close()

	_, err = source.Next(self.ctx)
	require.NoError(self.T(), err)

	_, err = source.Next(self.ctx)
	require.Error(self.T(), err)
	assert.Contains(self.T(), err.Error(), "bad.jsonl:2")
}

func (self *EventLogsTestSuite) TestJsonlMissingTimestamp() {
	path := self.writeFile("nots.jsonl",
		`{"EventID":4625}`+"\n")
	source, err := OpenJsonl(self.ctx, SourceSpec{Type: "jsonl", Path: path})
	require.NoError(self.T(), err)
	defer source.Close()

	_, err = source.Next(self.ctx)
	assert.Error(self.T(), err)
}

func (self *EventLogsTestSuite) TestOpenFailures() {
	_, err := Open(self.ctx, SourceSpec{
		Type: "jsonl", Path: filepath.Join(self.dir, "missing.jsonl")})
	assert.Error(self.T(), err)

	_, err = Open(self.ctx, SourceSpec{
		Type: "evtx", Path: filepath.Join(self.dir, "missing.evtx")})
	assert.Error(self.T(), err)

	_, err = Open(self.ctx, SourceSpec{Type: "evtx"})
	assert.Error(self.T(), err)
}

func (self *EventLogsTestSuite) TestCancelled() {
	source := NewMemorySource(&RawEvent{EventID: 4625})

	ctx, cancel := context.WithCancel(self.ctx)
	cancel()

	_, err := source.Next(ctx)
	assert.True(self.T(), errors.Is(err, context.Canceled))
	assert.Equal(self.T(), 0, source.Consumed())
}

func (self *EventLogsTestSuite) TestMemorySource() {
	source := NewMemorySource(
		&RawEvent{EventID: 4625}, &RawEvent{EventID: 4624})
	events := self.readAll(source)
	assert.Equal(self.T(), 2, len(events))
	assert.Equal(self.T(), 2, source.Consumed())

	require.NoError(self.T(), source.Close())
	_, err := source.Next(self.ctx)
	assert.Equal(self.T(), io.EOF, err)
}

type testChunk struct {
	last    uint64
	records []*chunkRecord
	err     error
	parsed  int
}

func (self *testChunk) LastRecordID() uint64 {
	return self.last
}

func (self *testChunk) Records() ([]*chunkRecord, error) {
	self.parsed++
	return append([]*chunkRecord{}, self.records...), self.err
}

func testRecords(ids ...uint64) []*chunkRecord {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	var result []*chunkRecord
	for _, id := range ids {
		ts := base.Add(time.Duration(id) * time.Minute)
		result = append(result, &chunkRecord{
			RecordID: id,
			Event: map[string]interface{}{
				"Event": map[string]interface{}{
					"System": map[string]interface{}{
						"EventID": 4625,
						"TimeCreated": map[string]interface{}{
							"SystemTime": ts.Format(time.RFC3339),
						},
					},
				},
			},
		})
	}
	return result
}

func recordIds(events []*RawEvent) []uint64 {
	var result []uint64
	for _, event := range events {
		result = append(result, event.RecordID)
	}
	return result
}

func (self *EventLogsTestSuite) TestEvtxSourceNewestFirst() {
	// Chunks in file order after the ring buffer wrapped.
	middle := &testChunk{last: 10, records: testRecords(9, 6, 10, 8)}
	newest := &testChunk{last: 20, records: testRecords(11, 20, 15)}
	oldest := &testChunk{last: 5, records: testRecords(4, 5)}

	source := newEvtxSource("Security.evtx",
		[]recordChunk{middle, newest, oldest}, nil)

	event, err := source.Next(self.ctx)
	require.NoError(self.T(), err)
	assert.Equal(self.T(), uint64(20), event.RecordID)
	assert.Equal(self.T(),
		time.Date(2024, 3, 10, 0, 20, 0, 0, time.UTC), event.Timestamp)

	// Only the newest chunk has been parsed so far.
	assert.Equal(self.T(), 1, newest.parsed)
	assert.Equal(self.T(), 0, middle.parsed)
	assert.Equal(self.T(), 0, oldest.parsed)

	rest := self.readAll(source)
	assert.Equal(self.T(), []uint64{15, 11, 10, 9, 8, 6, 5, 4}, recordIds(rest))

	assert.Equal(self.T(), 1, middle.parsed)
	assert.Equal(self.T(), 1, oldest.parsed)

	_, err = source.Next(self.ctx)
	assert.Equal(self.T(), io.EOF, err)
	assert.NoError(self.T(), source.Close())
}

func (self *EventLogsTestSuite) TestEvtxSourceDamagedChunk() {
	logging.ClearMemoryLogs()

	damaged := &testChunk{
		last:    8,
		records: testRecords(7, 8),
		err:     errors.New("unexpected EOF"),
	}
	empty := &testChunk{last: 3, err: errors.New("bad magic")}
	source := newEvtxSource("Security.evtx",
		[]recordChunk{empty, damaged}, nil)

	// Records parsed before the damage are still returned.
	events := self.readAll(source)
	assert.Equal(self.T(), []uint64{8, 7}, recordIds(events))

	logs := strings.Join(logging.GetMemoryLogs(), "\n")
	assert.Contains(self.T(), logs,
		"evtx: Security.evtx: chunk 0: unexpected EOF")
	assert.Contains(self.T(), logs,
		"evtx: Security.evtx: chunk 1: bad magic")
}

func (self *EventLogsTestSuite) TestEvtxSourceCancelled() {
	chunk := &testChunk{last: 2, records: testRecords(1, 2)}
	source := newEvtxSource("Security.evtx", []recordChunk{chunk}, nil)

	ctx, cancel := context.WithCancel(self.ctx)
	cancel()

	_, err := source.Next(ctx)
	assert.True(self.T(), errors.Is(err, context.Canceled))
	assert.Equal(self.T(), 0, chunk.parsed)
}

func (self *EventLogsTestSuite) TestEventFromOrderedRecord() {
	record := ordereddict.NewDict().
		Set("Event", ordereddict.NewDict().
			Set("System", ordereddict.NewDict().
				Set("Provider", ordereddict.NewDict().
					Set("Name", "Microsoft-Windows-Security-Auditing")).
				Set("EventID", ordereddict.NewDict().
					Set("Value", uint64(4625))).
				Set("TimeCreated", ordereddict.NewDict().
					Set("SystemTime", float64(1710064800.5)))).
			Set("EventData", ordereddict.NewDict().
				Set("SubjectUserSid", "S-1-0-0").
				Set("TargetUserName", "admin").
				Set("LogonType", uint64(3))))

	event, ok := eventFromRecord(record, 42)
	require.True(self.T(), ok)

	assert.Equal(self.T(), 4625, event.EventID)
	assert.Equal(self.T(), uint64(42), event.RecordID)
	assert.Equal(self.T(), "Microsoft-Windows-Security-Auditing", event.SourceName)
	assert.Equal(self.T(),
		time.Date(2024, 3, 10, 10, 0, 0, 500000000, time.UTC), event.Timestamp)
	assert.Equal(self.T(), []string{"S-1-0-0", "admin", "3"}, event.Fields)

	logon_type, _ := event.Named.GetString("LogonType")
	assert.Equal(self.T(), "3", logon_type)
}

func (self *EventLogsTestSuite) TestEventFromMapRecord() {
	record := map[string]interface{}{
		"Event": map[string]interface{}{
			"System": map[string]interface{}{
				"EventID": 4624,
				"TimeCreated": map[string]interface{}{
					"SystemTime": "2024-03-10T10:00:00Z",
				},
			},
			"EventData": map[string]interface{}{
				"TargetUserName": "admin",
			},
		},
	}

	event, ok := eventFromRecord(record, 1)
	require.True(self.T(), ok)
	assert.Equal(self.T(), 4624, event.EventID)
	assert.Equal(self.T(),
		time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), event.Timestamp)

	// Maps carry no ordering so there are no positional fields.
	assert.Nil(self.T(), event.Fields)
	user, _ := event.Named.GetString("TargetUserName")
	assert.Equal(self.T(), "admin", user)

	// Records without a system block are dropped.
	_, ok = eventFromRecord(map[string]interface{}{}, 2)
	assert.False(self.T(), ok)
}

func TestEventLogs(t *testing.T) {
	suite.Run(t, &EventLogsTestSuite{})
}
