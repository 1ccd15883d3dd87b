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
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"www.velocidex.com/golang/triage/reporting"
)

// Prints the top entries of each table to the console.
func PrintSummary(out io.Writer, result *ScanResult, rows int) {
	agg := result.Aggregator

	fmt.Fprintf(out, "Read %v records, %v failed logins (%v)\n",
		humanize.Comma(int64(result.Scanned)),
		humanize.Comma(int64(agg.Count)), result.Reason)

	if agg.Count == 0 {
		return
	}

	fmt.Fprintf(out, "Newest %v, oldest %v\n",
		result.Newest.Format("2006-01-02 15:04:05 MST"),
		result.Oldest.Format("2006-01-02 15:04:05 MST"))

	for _, item := range []struct {
		title string
		table *FrequencyTable
	}{
		{"User", agg.Users},
		{"IP Address", agg.SourceIPs},
		{"Failure Reason", agg.FailureReasons},
		{"Sub Status", agg.SubStatuses},
	} {
		table := reporting.NewTable(out, "", item.title, "Failed Login Count")
		for _, kc := range item.table.MostCommon(rows) {
			table.Append([]string{kc.Key, humanize.Comma(int64(kc.Count))})
		}
		table.Render()
	}
}
