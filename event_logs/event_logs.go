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
// Package event_logs reads security event records newest first from
// the supported log sources.
package event_logs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
)

var (
	ErrUnknownSource = errors.New("unknown event source")

	mu      sync.Mutex
	openers = make(map[string]Opener)
)

// A single record as read from the log. Fields holds the insertion
// strings in order. Named holds the same data keyed by field name
// when the source records names.
type RawEvent struct {
	EventID    int
	RecordID   uint64
	Timestamp  time.Time
	SourceName string
	Fields     []string
	Named      *ordereddict.Dict
}

// Returns the insertion string at position or "" if the record is
// too short.
func (self *RawEvent) Field(position int) string {
	if position < 0 || position >= len(self.Fields) {
		return ""
	}
	return self.Fields[position]
}

// A lazy sequence of events, newest first. Next returns io.EOF once
// the source is exhausted.
type Source interface {
	Next(ctx context.Context) (*RawEvent, error)
	Close() error
}

type SourceSpec struct {
	Type string
	Path string
}

func (self SourceSpec) String() string {
	return fmt.Sprintf("%s:%s", self.Type, self.Path)
}

type Opener func(ctx context.Context, spec SourceSpec) (Source, error)

func RegisterOpener(name string, opener Opener) {
	mu.Lock()
	defer mu.Unlock()

	openers[name] = opener
}

func Open(ctx context.Context, spec SourceSpec) (Source, error) {
	mu.Lock()
	opener, pres := openers[spec.Type]
	mu.Unlock()

	if !pres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, spec.Type)
	}

	return opener(ctx, spec)
}

func Types() []string {
	mu.Lock()
	defer mu.Unlock()

	result := make([]string, 0, len(openers))
	for k := range openers {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
