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
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	// Registers the decoder excelize uses to size the chart.
	_ "image/png"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/go-errors/errors"
	"www.velocidex.com/golang/triage/utils"
)

const (
	SHEET_DETAIL = "Failed Logins"
	SHEET_STATS  = "Statistics"
	SHEET_DAILY  = "Logs Per Day"
)

type MergeOptions struct {
	// Cell the chart's top left corner is anchored to.
	ChartAnchor string

	KeepIntermediate bool
}

// Reads every row of a CSV file. Unlike csv.Reader blank lines are
// returned as empty rows so section separators survive.
func ReadRawRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows [][]string
	var offset int64
	lines_consumed := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}

		line, _ := reader.FieldPos(0)
		for i := lines_consumed + 1; i < line; i++ {
			rows = append(rows, []string{})
		}
		rows = append(rows, row)

		next_offset := reader.InputOffset()
		lines_consumed += bytes.Count(data[offset:next_offset], []byte{'\n'})
		offset = next_offset
	}
}

func setRows(xlsx *excelize.File, sheet string, rows [][]string) {
	for idx, row := range rows {
		if len(row) == 0 {
			continue
		}

		cells := make([]interface{}, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}

		xlsx.SetSheetRow(sheet, "A"+strconv.Itoa(idx+1), &cells)
	}
}

// Combines the three CSVs into one workbook with the chart on the
// last sheet, then removes the CSVs and the chart. Returns the
// removed files.
func Merge(paths Paths, options MergeOptions) ([]string, error) {
	xlsx := excelize.NewFile()
	xlsx.SetSheetName("Sheet1", SHEET_DETAIL)
	xlsx.NewSheet(SHEET_STATS)
	xlsx.NewSheet(SHEET_DAILY)

	for _, item := range []struct {
		sheet string
		path  string
	}{
		{SHEET_DETAIL, paths.Detail},
		{SHEET_STATS, paths.Stats},
		{SHEET_DAILY, paths.Daily},
	} {
		rows, err := ReadRawRows(item.path)
		if err != nil {
			return nil, err
		}
		setRows(xlsx, item.sheet, rows)
	}

	anchor := options.ChartAnchor
	if anchor == "" {
		anchor = "D1"
	}

	err := xlsx.AddPicture(SHEET_DAILY, anchor, paths.Chart, "")
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	xlsx.SetActiveSheet(1)

	err = xlsx.SaveAs(paths.Report)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	if options.KeepIntermediate {
		return nil, nil
	}

	removed := paths.Intermediates()
	err = utils.RemoveFiles(removed...)
	if err != nil {
		return nil, err
	}
	return removed, nil
}
