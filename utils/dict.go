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
package utils

import (
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
)

// Fetch a member from nested dicts using dot notation. Parsers hand
// back either ordered dicts or plain maps so both are walked.
func GetPath(item interface{}, key string) (interface{}, bool) {
	for _, member := range strings.Split(key, ".") {
		switch t := item.(type) {
		case *ordereddict.Dict:
			if t == nil {
				return nil, false
			}
			value, pres := t.Get(member)
			if !pres {
				return nil, false
			}
			item = value

		case map[string]interface{}:
			value, pres := t[member]
			if !pres {
				return nil, false
			}
			item = value

		default:
			return nil, false
		}
	}
	return item, true
}

func GetString(item interface{}, key string) string {
	value, pres := GetPath(item, key)
	if !pres || IsNil(value) {
		return ""
	}
	return ToString(value)
}

func GetInt64(item interface{}, key string) (int64, bool) {
	value, pres := GetPath(item, key)
	if !pres {
		return 0, false
	}

	switch t := value.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		res, err := strconv.ParseInt(t, 0, 64)
		return res, err == nil
	}
	return 0, false
}

func GetFloat64(item interface{}, key string) (float64, bool) {
	value, pres := GetPath(item, key)
	if !pres {
		return 0, false
	}

	switch t := value.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case string:
		res, err := strconv.ParseFloat(t, 64)
		return res, err == nil
	}

	res, ok := GetInt64(item, key)
	return float64(res), ok
}
