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
	"regexp"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/xhit/go-str2duration/v2"
)

var (
	ErrInvalidTimeframe = errors.New("invalid timeframe")

	timeframe_regex = regexp.MustCompile(`^[0-9]+[dhm]$`)
)

// A timeframe is a single token of digits followed by one unit
// letter: d (days), h (hours) or m (minutes).
func ParseTimeframe(token string) (time.Duration, error) {
	token = strings.TrimSpace(token)
	if !timeframe_regex.MatchString(token) {
		return 0, fmt.Errorf("%w: %q (expected <N>d, <N>h or <N>m)",
			ErrInvalidTimeframe, token)
	}

	duration, err := str2duration.ParseDuration(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeframe, token, err)
	}

	if duration <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive",
			ErrInvalidTimeframe, token)
	}

	return duration, nil
}

// Returns the [start, end] window ending at now.
func WindowFromTimeframe(token string, now time.Time) (
	start time.Time, end time.Time, err error) {
	duration, err := ParseTimeframe(token)
	if err != nil {
		return start, end, err
	}
	return now.Add(-duration), now, nil
}
