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
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/inconshreveable/mousetrap"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/utils"
)

var (
	prompt_flag = app.Flag(
		"prompt", "Present a prompt before exit").Bool()
)

// Used when a command fails. The stack recorded when the error was
// wrapped is only shown with --verbose.
func FatalIfError(err error, format string, args ...interface{}) {
	if err == nil {
		return
	}

	if *verbose_flag {
		fmt.Fprintln(os.Stderr, utils.ErrorStack(err))
	}
	doPrompt()
	kingpin.FatalIfError(err, format, args...)
}

// Possibly ask for a prompt before exiting. When the tool is double
// clicked from Explorer the console would otherwise close before the
// output can be read.
func doPrompt() {
	if *prompt_flag || mousetrap.StartedByExplorer() {
		fmt.Println("Press the Enter Key to end")
		_, _ = fmt.Scanln()
	}
}

// Cancels the returned context on the first interrupt so partial
// output is closed cleanly.
func InstallSignalHandler(
	top_ctx context.Context,
	config_obj *config_proto.Config) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(top_ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(quit)

		select {
		case <-quit:
			logging.GetLogger(config_obj, &logging.ToolComponent).
				Info("Interrupted, shutting down")
			cancel()

		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
