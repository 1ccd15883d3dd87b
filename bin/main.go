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
	"os"

	"github.com/alecthomas/kingpin/v2"
	"www.velocidex.com/golang/triage/config"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"

	// Register the event log parsers.
	_ "www.velocidex.com/golang/triage/event_logs"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("triage",
		"Incident response triage of failed logons, source addresses and executables.")

	config_path = app.Flag("config", "The configuration file.").Short('c').
			String()

	output_flag = app.Flag("output", "Directory reports are written to.").
			Short('o').String()

	verbose_flag = app.Flag(
		"verbose", "Enable verbose logging.").Short('v').
		Default("false").Bool()

	command_handlers []CommandHandler
)

// Config sources in order of preference: the --config flag, the
// TRIAGE_CONFIG environment variable and finally the built in
// defaults. A configured log directory that can not be used is an
// error.
func makeDefaultConfigLoader() *config.Loader {
	return config.NewLoader().
		WithVerbose(*verbose_flag).
		WithRequiredLogging().
		WithFileLoader(*config_path).
		WithEnvLoader(constants.TRIAGE_CONFIG).
		WithDefaultLoader().
		WithEnvOverrides().
		WithConfigMutator("Output flag",
			func(config_obj *config_proto.Config) error {
				if *output_flag != "" {
					config_obj.Output.Directory = *output_flag
				}
				return nil
			})
}

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}

	doPrompt()
}
