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
	"encoding/csv"
	"io"
	"strconv"

	"github.com/go-errors/errors"
	"www.velocidex.com/golang/triage/utils"
)

func keyCountRow(label string, item KeyCount) []string {
	row := []string{item.Key, strconv.Itoa(item.Count)}
	if label != "" {
		row = append([]string{label}, row...)
	}
	return row
}

// Builds the statistics sheet: users and addresses by descending
// count followed by the summary rows.
func BuildStatistics(agg *Aggregator) ([][]string, error) {
	tables := []*FrequencyTable{
		agg.Users, agg.SourceIPs, agg.FailureReasons, agg.SubStatuses}
	for _, table := range tables {
		if table.Len() == 0 {
			return nil, ErrNoEvents
		}
	}

	var rows [][]string

	rows = append(rows, []string{"User", "Failed Login Count"})
	for _, item := range agg.Users.MostCommon(0) {
		rows = append(rows, keyCountRow("", item))
	}
	rows = append(rows, []string{})

	rows = append(rows, []string{"IP Address", "Failed Login Count"})
	for _, item := range agg.SourceIPs.MostCommon(0) {
		rows = append(rows, keyCountRow("", item))
	}
	rows = append(rows, []string{})

	least_user, _ := agg.Users.LeastCommon()
	least_ip, _ := agg.SourceIPs.LeastCommon()
	most_reason := agg.FailureReasons.MostCommon(1)[0]
	least_reason, _ := agg.FailureReasons.LeastCommon()
	least_sub_status, _ := agg.SubStatuses.LeastCommon()

	rows = append(rows,
		[]string{"Additional Statistics"},
		keyCountRow("User with Least Failed Logins", least_user),
		keyCountRow("IP Least Seen", least_ip),
		keyCountRow("Most Common Failure Reason", most_reason),
		keyCountRow("Most Rare Failure Reason", least_reason),
		keyCountRow("Most Rare Sub Status", least_sub_status),
	)

	return rows, nil
}

func WriteStatistics(path string, agg *Aggregator) error {
	rows, err := BuildStatistics(agg)
	if err != nil {
		return err
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	return utils.WriteFile(path, func(w io.Writer) error {
		err := csv.NewWriter(w).WriteAll(rows)
		if err != nil {
			return errors.Wrap(err, 0)
		}
		return nil
	})
}
