package logins

import (
	"time"

	"www.velocidex.com/golang/triage/event_logs"
)

var (
	testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
)

type memoryWriter struct {
	records []*LogonFailureRecord
}

func (self *memoryWriter) Write(record *LogonFailureRecord) error {
	self.records = append(self.records, record)
	return nil
}

func failedLogon(ts time.Time, user, ip string) *event_logs.RawEvent {
	fields := make([]string, 21)
	fields[5] = user
	fields[6] = "WS01"
	fields[7] = "0xc000006d"
	fields[8] = "%%2313"
	fields[9] = "0xc000006a"
	fields[10] = "3"
	fields[11] = "NtLmSsp"
	fields[19] = ip
	fields[20] = "51234"

	return &event_logs.RawEvent{
		EventID:    4625,
		Timestamp:  ts,
		SourceName: "Microsoft-Windows-Security-Auditing",
		Fields:     fields,
	}
}

func record(user, ip, reason, sub_status string) *LogonFailureRecord {
	return &LogonFailureRecord{
		Timestamp:     testNow,
		EventID:       4625,
		User:          user,
		SourceIP:      ip,
		FailureReason: reason,
		SubStatus:     sub_status,
	}
}
