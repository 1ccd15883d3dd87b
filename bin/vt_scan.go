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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/sirupsen/logrus"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/malware"
	"www.velocidex.com/golang/triage/reporting"
	"www.velocidex.com/golang/triage/utils"
)

var (
	vt_scan_command = app.Command(
		"vt_scan", "Hash executables under a directory and look them up on VirusTotal.")

	vt_scan_root = vt_scan_command.Arg(
		"directory", "Directory to scan recursively.").
		Required().ExistingDir()

	vt_scan_extensions = vt_scan_command.Flag(
		"ext", "File extension to collect (repeatable).").Strings()
)

func doVTScan() error {
	config_obj, err := makeDefaultConfigLoader().
		WithConfigMutator("vt_scan flags",
			func(config_obj *config_proto.Config) error {
				if len(*vt_scan_extensions) > 0 {
					config_obj.VirusTotal.Extensions = *vt_scan_extensions
				}
				return nil
			}).LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to load config: %w", err)
	}

	ctx, cancel := InstallSignalHandler(context.Background(), config_obj)
	defer cancel()

	logger := logging.GetLogger(config_obj, &logging.ToolComponent)
	logger.WithFields(logrus.Fields{
		"run_id":     utils.NewRunId(),
		"root":       *vt_scan_root,
		"extensions": config_obj.VirusTotal.Extensions,
	}).Info("Scanning files")

	client := malware.NewVirusTotalClient(config_obj)
	defer client.Close()

	summary, err := malware.Scan(ctx, config_obj, client, *vt_scan_root)
	if err != nil {
		return err
	}

	printDetections(summary.Files)
	fmt.Printf("%v files checked: %v detected, %v unknown, %v failed\n",
		len(summary.Files), summary.Detected, summary.NotFound, summary.Failed)
	fmt.Printf("Report written to %v\n", summary.Report)
	return nil
}

func printDetections(files []*malware.FileResult) {
	var rows []*ordereddict.Dict
	for _, file := range files {
		if file.Verdict == nil || !file.Verdict.Detected() {
			continue
		}
		rows = append(rows, ordereddict.NewDict().
			Set("Path", file.Path).
			Set("Detections", fmt.Sprintf("%v/%v",
				file.Verdict.Detections, file.Verdict.Engines)).
			Set("Names", strings.Join(file.Verdict.Names, ", ")))
	}

	if len(rows) > 0 {
		reporting.OutputRowsToTable(rows, os.Stdout).Render()
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		if command == vt_scan_command.FullCommand() {
			FatalIfError(doVTScan(), "vt_scan")
			return true
		}
		return false
	})
}
