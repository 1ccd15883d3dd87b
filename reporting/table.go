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
// Package reporting renders results for the console.
package reporting

import (
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/olekukonko/tablewriter"
	"www.velocidex.com/golang/triage/utils"
)

func NewTable(out io.Writer, caption string, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	if caption != "" {
		table.SetCaption(true, caption)
	}
	return table
}

// Columns are taken from the first row. Missing cells are left
// empty.
func OutputRowsToTable(rows []*ordereddict.Dict,
	out io.Writer) *tablewriter.Table {
	var columns []string

	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		string_row := []string{}
		if columns == nil {
			columns = row.Keys()
			table.SetHeader(columns)
		}

		for _, key := range columns {
			cell := ""
			value, pres := row.Get(key)
			if pres && !utils.IsNil(value) {
				cell = utils.Elide(utils.ToString(value), 120/len(columns))
			}
			string_row = append(string_row, cell)
		}

		table.Append(string_row)
	}

	return table
}
