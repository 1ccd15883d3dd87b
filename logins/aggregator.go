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
	"sort"

	"github.com/Velocidex/ordereddict"
)

type KeyCount struct {
	Key   string
	Count int
}

// Counts occurrences of keys, remembering the order keys were
// first seen in.
type FrequencyTable struct {
	counts *ordereddict.Dict
	total  int
}

func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: ordereddict.NewDict()}
}

func (self *FrequencyTable) Increment(key string) {
	self.total++

	value, pres := self.counts.Get(key)
	if !pres {
		self.counts.Set(key, 1)
		return
	}
	self.counts.Update(key, value.(int)+1)
}

func (self *FrequencyTable) Count(key string) int {
	value, pres := self.counts.Get(key)
	if !pres {
		return 0
	}
	return value.(int)
}

func (self *FrequencyTable) Total() int {
	return self.total
}

func (self *FrequencyTable) Len() int {
	return self.counts.Len()
}

// Entries in insertion order.
func (self *FrequencyTable) Items() []KeyCount {
	result := make([]KeyCount, 0, self.counts.Len())
	for _, k := range self.counts.Keys() {
		result = append(result, KeyCount{Key: k, Count: self.Count(k)})
	}
	return result
}

// The n highest counts, highest first. Equal counts keep insertion
// order. n <= 0 returns every entry.
func (self *FrequencyTable) MostCommon(n int) []KeyCount {
	result := self.Items()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if n > 0 && n < len(result) {
		result = result[:n]
	}
	return result
}

// The lowest count. Among equal counts the first inserted key wins.
func (self *FrequencyTable) LeastCommon() (KeyCount, bool) {
	var result KeyCount
	found := false
	for _, item := range self.Items() {
		if !found || item.Count < result.Count {
			result = item
			found = true
		}
	}
	return result, found
}

// Owns the frequency tables for one run.
type Aggregator struct {
	Users          *FrequencyTable
	SourceIPs      *FrequencyTable
	FailureReasons *FrequencyTable
	SubStatuses    *FrequencyTable

	Count int
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		Users:          NewFrequencyTable(),
		SourceIPs:      NewFrequencyTable(),
		FailureReasons: NewFrequencyTable(),
		SubStatuses:    NewFrequencyTable(),
	}
}

// Keys are the raw values. No case folding or trimming is applied.
func (self *Aggregator) Observe(record *LogonFailureRecord) {
	self.Users.Increment(record.User)
	self.SourceIPs.Increment(record.SourceIP)
	self.FailureReasons.Increment(record.FailureReason)
	self.SubStatuses.Increment(record.SubStatus)
	self.Count++
}
