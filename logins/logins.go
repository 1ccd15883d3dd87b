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

	"www.velocidex.com/golang/triage/config"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/event_logs"
)

// Scans the configured event log over the window and writes the
// report. The scan result is returned even when reporting fails so
// callers can still summarize what was read.
func Run(ctx context.Context,
	config_obj *config_proto.Config,
	window Window) (*ScanResult, *Bundle, error) {
	loc, err := config.GetLocation(config_obj)
	if err != nil {
		return nil, nil, err
	}

	source, err := event_logs.Open(ctx, event_logs.SourceSpec{
		Type: config_obj.EventLog.Type,
		Path: config_obj.EventLog.Path,
	})
	if err != nil {
		return nil, nil, err
	}
	defer source.Close()

	paths := NewPaths(config_obj, window.End, loc)
	writer, err := NewDetailWriter(paths.Detail, loc)
	if err != nil {
		return nil, nil, err
	}

	result, err := NewScanner(config_obj, window, writer).Scan(ctx, source)
	close_err := writer.Close()
	if err != nil {
		return result, nil, err
	}
	if close_err != nil {
		return result, nil, close_err
	}

	bundle, err := NewReport(config_obj, paths, loc).Generate(
		ctx, result.Aggregator)
	return result, bundle, err
}
