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
	"path/filepath"
	"time"

	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
)

// Every file a run produces. Built once at startup and passed to
// each stage.
type Paths struct {
	Detail string
	Stats  string
	Daily  string
	Chart  string
	Report string
}

// The files deleted once the workbook is written.
func (self Paths) Intermediates() []string {
	return []string{self.Detail, self.Stats, self.Daily, self.Chart}
}

// File names carry the date of the run in loc.
func NewPaths(config_obj *config_proto.Config,
	now time.Time, loc *time.Location) Paths {
	dir := config_obj.Output.Directory
	date := now.In(loc).Format(constants.DATE_FORMAT)

	return Paths{
		Detail: filepath.Join(dir, constants.GetDetailFilename(date)),
		Stats:  filepath.Join(dir, constants.GetStatsFilename(date)),
		Daily:  filepath.Join(dir, constants.DAILY_FILENAME),
		Chart:  filepath.Join(dir, constants.CHART_FILENAME),
		Report: filepath.Join(dir, constants.GetReportFilename(date)),
	}
}
