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
package config

import (
	"os"
	"runtime"
	"time"

	"github.com/Velocidex/yaml/v2"
	"github.com/go-errors/errors"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
	"www.velocidex.com/golang/triage/event_logs"
	"www.velocidex.com/golang/triage/utils"
)

// Embed build time constants into here for reporting the version.
var (
	build_time  string
	commit_hash string
)

func GetVersion() map[string]string {
	return map[string]string{
		"version":    constants.VERSION,
		"build_time": build_time,
		"commit":     commit_hash,
		"platform":   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// The defaults reproduce the constants the original triage scripts
// were hard coded with.
func GetDefaultConfig() *config_proto.Config {
	result := &config_proto.Config{}
	applyDefaults(result)
	return result
}

// Fill in any missing fields so the rest of the program never has
// to check for nil sections.
func applyDefaults(config_obj *config_proto.Config) {
	if config_obj.Logging == nil {
		config_obj.Logging = &config_proto.LoggingConfig{}
	}

	if config_obj.Output == nil {
		config_obj.Output = &config_proto.OutputConfig{}
	}
	if config_obj.Output.Directory == "" {
		config_obj.Output.Directory = "."
		if runtime.GOOS == "windows" {
			config_obj.Output.Directory = constants.DEFAULT_WINDOWS_CASE_DIR
		}
	}

	if config_obj.EventLog == nil {
		config_obj.EventLog = &config_proto.EventLogConfig{}
	}
	if config_obj.EventLog.Type == "" {
		config_obj.EventLog.Type = "evtx"
	}
	if config_obj.EventLog.Path == "" && runtime.GOOS == "windows" {
		config_obj.EventLog.Path = constants.SECURITY_EVTX_WIN
	}
	if config_obj.EventLog.OrderTolerance == 0 {
		config_obj.EventLog.OrderTolerance = 60
	}

	if config_obj.Logins == nil {
		config_obj.Logins = &config_proto.LoginsConfig{}
	}
	logins := config_obj.Logins
	if logins.EventId == 0 {
		logins.EventId = constants.FAILED_LOGON_EVENT_ID
	}
	if logins.SummaryRows == 0 {
		logins.SummaryRows = 10
	}
	if logins.ChartWidth == 0 {
		logins.ChartWidth = 1200
	}
	if logins.ChartHeight == 0 {
		logins.ChartHeight = 600
	}
	if logins.ChartAnchor == "" {
		logins.ChartAnchor = "D1"
	}

	if config_obj.AbuseIPDB == nil {
		config_obj.AbuseIPDB = &config_proto.AbuseIPDBConfig{}
	}
	abuse := config_obj.AbuseIPDB
	if abuse.BaseUrl == "" {
		abuse.BaseUrl = "https://api.abuseipdb.com"
	}
	if abuse.MaxAgeInDays == 0 {
		abuse.MaxAgeInDays = 90
	}
	if abuse.IpColumn == "" {
		abuse.IpColumn = "IP"
	}
	applyClientDefaults(&abuse.ApiClientConfig, 1)

	if config_obj.VirusTotal == nil {
		config_obj.VirusTotal = &config_proto.VirusTotalConfig{}
	}
	vt := config_obj.VirusTotal
	if vt.BaseUrl == "" {
		vt.BaseUrl = "https://www.virustotal.com"
	}
	if len(vt.Extensions) == 0 {
		vt.Extensions = config_proto.StringArray{"exe", "dll", "lnk"}
	}
	if vt.MaxNames == 0 {
		vt.MaxNames = 3
	}

	// The public API allows 4 lookups a minute.
	applyClientDefaults(&vt.ApiClientConfig, 4.0/60)
}

func applyClientDefaults(config_obj *config_proto.ApiClientConfig, rate float64) {
	if config_obj.RequestsPerSecond == 0 {
		config_obj.RequestsPerSecond = rate
	}
	if config_obj.Timeout == 0 {
		config_obj.Timeout = 30
	}
	if config_obj.CacheSize == 0 {
		config_obj.CacheSize = 10000
	}
}

func ValidateConfig(config_obj *config_proto.Config) error {
	_, err := GetLocation(config_obj)
	if err != nil {
		return err
	}

	if !utils.InString(event_logs.Types(), config_obj.EventLog.Type) {
		return errors.Errorf("Unsupported event log type %q (supported %v)",
			config_obj.EventLog.Type, event_logs.Types())
	}

	for _, client := range []*config_proto.ApiClientConfig{
		&config_obj.AbuseIPDB.ApiClientConfig,
		&config_obj.VirusTotal.ApiClientConfig} {
		if client.RequestsPerSecond < 0 {
			return errors.New("requests_per_second may not be negative")
		}
		if client.Retries < 0 {
			return errors.New("retries may not be negative")
		}
	}

	return nil
}

// The time zone reports are rendered in.
func GetLocation(config_obj *config_proto.Config) (*time.Location, error) {
	if config_obj.Output == nil || config_obj.Output.Timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(config_obj.Output.Timezone)
	if err != nil {
		return nil, errors.Errorf("Invalid timezone %q: %v",
			config_obj.Output.Timezone, err)
	}
	return loc, nil
}

func Encode(config_obj *config_proto.Config) ([]byte, error) {
	return yaml.Marshal(config_obj)
}

func read_config_from_file(filename string) (*config_proto.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return parse_config(data)
}

func parse_config(data []byte) (*config_proto.Config, error) {
	result := &config_proto.Config{}
	err := yaml.UnmarshalStrict(data, result)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return result, nil
}
