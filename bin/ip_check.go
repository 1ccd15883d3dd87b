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
	"path/filepath"

	"github.com/Velocidex/ordereddict"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/reporting"
	"www.velocidex.com/golang/triage/reputation"
	"www.velocidex.com/golang/triage/utils"
)

var (
	ip_check_command = app.Command(
		"ip_check", "Look up addresses from a CSV file on AbuseIPDB.")

	ip_check_input = ip_check_command.Arg(
		"input", "CSV file with a column of addresses.").
		Required().ExistingFile()

	ip_check_column = ip_check_command.Flag(
		"column", "Name of the address column.").String()

	ip_check_output = ip_check_command.Flag(
		"results", "CSV file results are appended to.").String()
)

func doIPCheck() error {
	config_obj, err := makeDefaultConfigLoader().
		WithConfigMutator("ip_check flags",
			func(config_obj *config_proto.Config) error {
				if *ip_check_column != "" {
					config_obj.AbuseIPDB.IpColumn = *ip_check_column
				}
				return nil
			}).LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to load config: %w", err)
	}

	output := *ip_check_output
	if output == "" {
		output = filepath.Join(config_obj.Output.Directory,
			constants.ABUSEIP_RESULTS)
	}

	addresses, err := reputation.ReadAddresses(
		*ip_check_input, config_obj.AbuseIPDB.IpColumn)
	if err != nil {
		return err
	}

	ctx, cancel := InstallSignalHandler(context.Background(), config_obj)
	defer cancel()

	logger := logging.GetLogger(config_obj, &logging.ToolComponent)
	logger.WithFields(logrus.Fields{
		"run_id":    utils.NewRunId(),
		"input":     *ip_check_input,
		"addresses": len(addresses),
	}).Info("Checking addresses")

	client := reputation.NewAbuseIPDBClient(config_obj)
	defer client.Close()

	summary, err := reputation.Enrich(ctx, config_obj, client, addresses, output)
	if summary != nil {
		printResults(summary.Results)
		fmt.Printf("Checked %v addresses: %v written to %v, %v failed\n",
			humanize.Comma(int64(summary.Checked)),
			humanize.Comma(int64(summary.Written)), output,
			humanize.Comma(int64(summary.Failed)))
	}
	return err
}

func printResults(results []*reputation.Result) {
	if len(results) == 0 {
		return
	}

	rows := make([]*ordereddict.Dict, 0, len(results))
	for _, result := range results {
		row := ordereddict.NewDict().Set("IP", result.IP)
		if result.Err != nil {
			row.Set("Score", "").Set("Country", "").Set("ISP", "").
				Set("Error", result.Err.Error())
		} else {
			row.Set("Score", utils.GetString(result.Value, "abuseConfidenceScore")).
				Set("Country", utils.GetString(result.Value, "countryCode")).
				Set("ISP", utils.GetString(result.Value, "isp")).
				Set("Error", "")
		}
		rows = append(rows, row)
	}
	reporting.OutputRowsToTable(rows, os.Stdout).Render()
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		if command == ip_check_command.FullCommand() {
			FatalIfError(doIPCheck(), "ip_check")
			return true
		}
		return false
	})
}
