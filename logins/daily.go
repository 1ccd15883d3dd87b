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
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/go-errors/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"www.velocidex.com/golang/triage/constants"
	"www.velocidex.com/golang/triage/utils"
)

type DailyCount struct {
	Date  string
	Count int
}

// Groups the records of the detail CSV on disk by calendar day in
// loc, oldest day first.
func BuildDailyCounts(detail_path string, loc *time.Location) ([]DailyCount, error) {
	records, err := ReadDetail(detail_path, loc)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, record := range records {
		counts[record.Timestamp.In(loc).Format(constants.DATE_FORMAT)]++
	}

	result := make([]DailyCount, 0, len(counts))
	for date, count := range counts {
		result = append(result, DailyCount{Date: date, Count: count})
	}

	// The date layout sorts lexically.
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result, nil
}

func WriteDailyCounts(path string, counts []DailyCount) error {
	rows := [][]string{{"Date", "Count"}}
	for _, item := range counts {
		rows = append(rows, []string{item.Date, strconv.Itoa(item.Count)})
	}
	return writeCSV(path, rows)
}

func RenderChart(path string, counts []DailyCount, width, height int) error {
	if len(counts) == 0 {
		return ErrNoEvents
	}

	bar_style := chart.Style{
		FillColor:   drawing.ColorFromHex("87ceeb"),
		StrokeColor: drawing.ColorFromHex("87ceeb"),
	}

	max_count := 1
	bars := make([]chart.Value, 0, len(counts))
	for _, item := range counts {
		bars = append(bars, chart.Value{
			Label: item.Date,
			Value: float64(item.Count),
			Style: bar_style,
		})
		if item.Count > max_count {
			max_count = item.Count
		}
	}

	bar_width := (width - 200) / (2 * len(bars))
	if bar_width > 80 {
		bar_width = 80
	}
	if bar_width < 4 {
		bar_width = 4
	}

	graph := chart.BarChart{
		Title:    "Number of Logs Per Day",
		Width:    width,
		Height:   height,
		BarWidth: bar_width,
		YAxis: chart.YAxis{
			Name: "Number of Logs",
			// A single day with a single event would otherwise
			// give an empty range.
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(max_count),
			},
			ValueFormatter: chart.IntValueFormatter,
		},
		Bars: bars,
	}

	return utils.WriteFile(path, func(w io.Writer) error {
		err := graph.Render(chart.PNG, w)
		if err != nil {
			return errors.Wrap(err, 0)
		}
		return nil
	})
}
