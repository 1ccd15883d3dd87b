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
package main

import (
	"fmt"
	"runtime/debug"

	"github.com/Velocidex/yaml/v2"
	"www.velocidex.com/golang/triage/config"
	"www.velocidex.com/golang/triage/event_logs"
)

var (
	version = app.Command("version", "Report the binary version and build information.")
)

type versionInfo struct {
	Version       string            `yaml:"version"`
	BuildTime     string            `yaml:"build_time"`
	Commit        string            `yaml:"commit"`
	Platform      string            `yaml:"platform"`
	EventLogTypes []string          `yaml:"event_log_types"`
	GoVersion     string            `yaml:"go_version,omitempty"`
	Modules       map[string]string `yaml:"modules,omitempty"`
}

// Build details and the event log formats this binary reads. With
// verbose the linked module versions are listed too.
func getVersionInfo(verbose bool) *versionInfo {
	build := config.GetVersion()
	result := &versionInfo{
		Version:       build["version"],
		BuildTime:     build["build_time"],
		Commit:        build["commit"],
		Platform:      build["platform"],
		EventLogTypes: event_logs.Types(),
	}

	if verbose {
		info, ok := debug.ReadBuildInfo()
		if ok {
			result.GoVersion = info.GoVersion
			result.Modules = make(map[string]string)
			for _, dep := range info.Deps {
				result.Modules[dep.Path] = dep.Version
			}
		}
	}
	return result
}

func doVersion() error {
	res, err := yaml.Marshal(getVersionInfo(*verbose_flag))
	if err != nil {
		return err
	}
	fmt.Printf("%v", string(res))
	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		if command == version.FullCommand() {
			FatalIfError(doVersion(), "Unable to encode version.")
			return true
		}
		return false
	})
}
