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
package vtesting

import (
	"testing"

	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/triage/config"
	config_proto "www.velocidex.com/golang/triage/config/proto"
)

// A config writing all output into dir with timestamps rendered in
// UTC so fixtures do not depend on the host's zone.
func GetTestConfig(t *testing.T, dir string) *config_proto.Config {
	config_obj, err := config.NewLoader().
		WithDefaultLoader().
		WithConfigMutator("test output", func(
			config_obj *config_proto.Config) error {
			config_obj.Output.Directory = dir
			config_obj.Output.Timezone = "UTC"
			config_obj.EventLog.Type = "jsonl"
			return nil
		}).LoadAndValidate()
	require.NoError(t, err)

	return config_obj
}
