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
	"context"
	"time"

	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/utils"
)

// What a report run left on disk.
type Bundle struct {
	Report      string
	Removed     []string
	DailyCounts []DailyCount
	Records     int
}

type Report struct {
	config_obj *config_proto.Config
	paths      Paths
	loc        *time.Location
	logger     *logging.LogContext
}

func NewReport(config_obj *config_proto.Config,
	paths Paths, loc *time.Location) *Report {
	return &Report{
		config_obj: config_obj,
		paths:      paths,
		loc:        loc,
		logger:     logging.GetLogger(config_obj, &logging.ToolComponent),
	}
}

// Writes the statistics, the daily counts and the chart, then merges
// them with the detail CSV into the workbook. Each step leaves its
// file on disk before the next starts.
func (self *Report) Generate(ctx context.Context, agg *Aggregator) (*Bundle, error) {
	if agg.Count == 0 {
		err := utils.RemoveFiles(self.paths.Detail)
		if err != nil {
			return nil, err
		}
		return nil, ErrNoEvents
	}

	self.logger.Info("Creating statistics in %v", self.paths.Stats)
	err := WriteStatistics(self.paths.Stats, agg)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	self.logger.Info("Making logs per day graph")
	counts, err := BuildDailyCounts(self.paths.Detail, self.loc)
	if err != nil {
		return nil, err
	}

	err = WriteDailyCounts(self.paths.Daily, counts)
	if err != nil {
		return nil, err
	}

	logins_config := self.config_obj.Logins
	err = RenderChart(self.paths.Chart, counts,
		logins_config.ChartWidth, logins_config.ChartHeight)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	self.logger.Info("Creating an output Excel file %v", self.paths.Report)
	removed, err := Merge(self.paths, MergeOptions{
		ChartAnchor:      logins_config.ChartAnchor,
		KeepIntermediate: logins_config.KeepIntermediate,
	})
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Report:      self.paths.Report,
		Removed:     removed,
		DailyCounts: counts,
		Records:     agg.Count,
	}, nil
}
