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

	"github.com/alecthomas/kingpin/v2"
	"www.velocidex.com/golang/triage/config"
)

var (
	config_command = app.Command(
		"config", "Manipulate the configuration.")

	config_show_command = config_command.Command(
		"show", "Show the loaded configuration, including defaults.")

	config_generate_command = config_command.Command(
		"generate", "Generate a new config file with the default settings.")
)

func doShowConfig() error {
	config_obj, err := makeDefaultConfigLoader().LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to load config: %w", err)
	}

	// API keys are secrets.
	for _, key := range []*string{
		&config_obj.AbuseIPDB.ApiKey, &config_obj.VirusTotal.ApiKey} {
		if *key != "" {
			*key = "XXXX"
		}
	}

	res, err := config.Encode(config_obj)
	if err != nil {
		return err
	}
	fmt.Printf("%v", string(res))
	return nil
}

func doGenerateConfig() error {
	res, err := config.Encode(config.GetDefaultConfig())
	if err != nil {
		return err
	}
	fmt.Printf("%v", string(res))
	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case config_show_command.FullCommand():
			FatalIfError(doShowConfig(), "config show")

		case config_generate_command.FullCommand():
			FatalIfError(doGenerateConfig(), "config generate")

		default:
			return false
		}
		return true
	})
}
