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
)

// Serves a fixed list of events in the order given.
type MemorySource struct {
	events []*RawEvent
	idx    int
	closed bool
}

func (self *MemorySource) Next(ctx context.Context) (*RawEvent, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	if self.closed || self.idx >= len(self.events) {
		return nil, io.EOF
	}

	event := self.events[self.idx]
	self.idx++
	return event, nil
}

func (self *MemorySource) Close() error {
	self.closed = true
	return nil
}

// Number of events handed out so far.
func (self *MemorySource) Consumed() int {
	return self.idx
}

func NewMemorySource(events ...*RawEvent) *MemorySource {
	return &MemorySource{events: events}
}
