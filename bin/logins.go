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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/logins"
	"www.velocidex.com/golang/triage/utils"
)

var (
	logins_command = app.Command(
		"logins", "Report failed logons from the security event log.")

	logins_timeframe = logins_command.Flag(
		"timeframe", "How far back to look: <N>d, <N>h or <N>m. "+
			"Prompted for when not given.").Short('t').String()

	logins_source = logins_command.Flag(
		"source", "Event log to read (default the Security log).").String()

	logins_type = logins_command.Flag(
		"type", "Event log format: evtx or jsonl.").String()

	logins_keep = logins_command.Flag(
		"keep_intermediate", "Keep the CSV and chart files after merging.").Bool()
)

// Reads a single timeframe token from the user.
func readTimeframe(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "timeframe: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrap(err, 0)
	}
	return strings.TrimSpace(line), nil
}

func doLogins() error {
	config_obj, err := makeDefaultConfigLoader().
		WithConfigMutator("Logins flags",
			func(config_obj *config_proto.Config) error {
				if *logins_source != "" {
					config_obj.EventLog.Path = *logins_source
				}
				if *logins_type != "" {
					config_obj.EventLog.Type = *logins_type
				}
				if *logins_keep {
					config_obj.Logins.KeepIntermediate = true
				}
				return nil
			}).LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to load config: %w", err)
	}

	token := *logins_timeframe
	if token == "" {
		token, err = readTimeframe(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}

	start, end, err := utils.WindowFromTimeframe(token, utils.GetTime().Now())
	if err != nil {
		return err
	}

	ctx, cancel := InstallSignalHandler(context.Background(), config_obj)
	defer cancel()

	logger := logging.GetLogger(config_obj, &logging.ToolComponent)
	logger.WithFields(logrus.Fields{
		"run_id": utils.NewRunId(),
		"source": config_obj.EventLog.Path,
		"start":  start.Format(constants.DETAIL_TIME_FORMAT),
		"end":    end.Format(constants.DETAIL_TIME_FORMAT),
	}).Info("Scanning for failed logons")

	result, bundle, err := logins.Run(ctx, config_obj,
		logins.Window{Start: start, End: end})
	if errors.Is(err, logins.ErrNoEvents) {
		if result != nil {
			logins.PrintSummary(os.Stdout, result, config_obj.Logins.SummaryRows)
		}
		fmt.Printf("No failed logons in the last %v\n", token)
		return nil
	}
	if err != nil {
		return err
	}

	logins.PrintSummary(os.Stdout, result, config_obj.Logins.SummaryRows)
	fmt.Printf("Report written to %v\n", bundle.Report)
	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		if command == logins_command.FullCommand() {
			FatalIfError(doLogins(), "logins")
			return true
		}
		return false
	})
}
