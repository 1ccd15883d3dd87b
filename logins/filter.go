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
	"time"

	"www.velocidex.com/golang/triage/event_logs"
)

// The inclusive interval of time being triaged.
type Window struct {
	Start time.Time
	End   time.Time
}

func (self Window) Contains(ts time.Time) bool {
	return !ts.Before(self.Start) && !ts.After(self.End)
}

type Filter struct {
	EventID int
	Window  Window
}

func (self *Filter) Accept(event *event_logs.RawEvent) bool {
	return event.EventID == self.EventID && self.Window.Contains(event.Timestamp)
}

// Where each column lives in a 4625 event. The name is used when the
// source keeps field names, the position otherwise.
type fieldSpec struct {
	name     string
	position int
}

var (
	userField          = fieldSpec{"TargetUserName", 5}
	hostField          = fieldSpec{"TargetDomainName", 6}
	statusField        = fieldSpec{"Status", 7}
	failureReasonField = fieldSpec{"FailureReason", 8}
	subStatusField     = fieldSpec{"SubStatus", 9}
	logonTypeField     = fieldSpec{"LogonType", 10}
	methodField        = fieldSpec{"LogonProcessName", 11}
	sourceIPField      = fieldSpec{"IpAddress", 19}
	sourcePortField    = fieldSpec{"IpPort", 20}
)

func getField(event *event_logs.RawEvent, spec fieldSpec) string {
	if event.Named != nil {
		value, pres := event.Named.GetString(spec.name)
		if pres {
			return value
		}
	}
	return event.Field(spec.position)
}

func BuildRecord(event *event_logs.RawEvent) *LogonFailureRecord {
	return &LogonFailureRecord{
		// The detail CSV keeps whole seconds.
		Timestamp:     event.Timestamp.Truncate(time.Second),
		EventID:       event.EventID,
		User:          getField(event, userField),
		Host:          getField(event, hostField),
		LogonType:     getField(event, logonTypeField),
		Method:        getField(event, methodField),
		FailureReason: getField(event, failureReasonField),
		Status:        getField(event, statusField),
		SubStatus:     getField(event, subStatusField),
		SourceIP:      getField(event, sourceIPField),
		SourcePort:    getField(event, sourcePortField),
		LogSource:     event.SourceName,
	}
}
