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
package malware

import (
	"sort"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/triage/utils"
)

// Analysis categories that count as a detection.
var detection_categories = []string{"malicious", "suspicious"}

type Verdict struct {
	Hash       string
	Engines    int
	Detections int

	// Unique detection names in engine name order.
	Names []string
}

func (self *Verdict) Detected() bool {
	return self.Detections > 0
}

// Counts the engines in a file's last_analysis_results.
func NewVerdict(hash string, attributes interface{}) *Verdict {
	result := &Verdict{Hash: hash}

	analysis, _ := utils.GetPath(attributes, "last_analysis_results")
	for _, engine := range engineResults(analysis) {
		result.Engines++

		category := utils.GetString(engine, "category")
		if !utils.InString(detection_categories, category) {
			continue
		}
		result.Detections++

		name := utils.GetString(engine, "result")
		if name != "" {
			result.Names = append(result.Names, name)
		}
	}
	result.Names = utils.Uniquify(result.Names)

	return result
}

// Engine results sorted by engine name.
func engineResults(analysis interface{}) []interface{} {
	var result []interface{}

	switch t := analysis.(type) {
	case *ordereddict.Dict:
		if t == nil {
			return nil
		}
		keys := append([]string{}, t.Keys()...)
		sort.Strings(keys)
		for _, key := range keys {
			value, _ := t.Get(key)
			result = append(result, value)
		}

	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			result = append(result, t[k])
		}
	}
	return result
}
