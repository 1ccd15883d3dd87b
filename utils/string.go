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
	"fmt"
	"reflect"
	"time"
	"unicode"
)

func InString(hay []string, needle string) bool {
	for _, x := range hay {
		if x == needle {
			return true
		}
	}

	return false
}

func IsNil(a interface{}) bool {
	defer func() { recover() }()
	return a == nil || reflect.ValueOf(a).IsNil()
}

func Elide(in string, length int) string {
	if len(in) < length {
		return in
	}

	return in[:length] + " ..."
}

// Removes duplicates preserving the order of first appearance.
func Uniquify(in []string) []string {
	result := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, i := range in {
		_, pres := seen[i]
		if pres {
			continue
		}
		seen[i] = true
		result = append(result, i)
	}
	return result
}

func FirstN(in []string, n int) []string {
	if n < 0 || len(in) <= n {
		return in
	}
	return in[:n]
}

func ToString(x interface{}) string {
	switch t := x.(type) {
	case nil:
		return ""

	case string:
		return t

	case []byte:
		return string(t)

	case error:
		return t.Error()

	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)

	case fmt.Stringer:
		return t.String()

	default:
		return fmt.Sprintf("%v", x)
	}
}

// Lower the string in a unicode aware way. This normalizes the
// strings for comparisons.
func ToLower(in string) string {
	var result []rune
	for _, c := range in {
		result = append(result, unicode.ToLower(c))
	}

	return string(result)
}
