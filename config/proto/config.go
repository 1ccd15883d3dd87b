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
package config_proto

// Can be an array or a string in YAML but always parses to a string
// array so users may write `extensions: exe` as well as a list.
type StringArray []string

func (self *StringArray) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var multi []string
	err := unmarshal(&multi)
	if err != nil {
		var single string
		err := unmarshal(&single)
		if err != nil {
			return err
		}
		*self = []string{single}
	} else {
		*self = multi
	}
	return nil
}

type LoggingConfig struct {
	// If set, logs are also written to rotated files in this
	// directory.
	OutputDirectory string `yaml:"output_directory,omitempty"`

	// Seconds between log file rotations and maximum retention.
	RotationTime uint64 `yaml:"rotation_time,omitempty"`
	MaxAge       uint64 `yaml:"max_age,omitempty"`

	Debug bool `yaml:"debug,omitempty"`
}

type OutputConfig struct {
	// All reports are written here.
	Directory string `yaml:"directory,omitempty"`

	// Time zone used to render timestamps and group events by
	// day. Defaults to the local zone.
	Timezone string `yaml:"timezone,omitempty"`
}

type EventLogConfig struct {
	// evtx or jsonl
	Type string `yaml:"type,omitempty"`
	Path string `yaml:"path,omitempty"`

	// How far (in seconds) a record may be newer than its
	// predecessor before the newest-first ordering is considered
	// violated.
	OrderTolerance uint64 `yaml:"order_tolerance,omitempty"`
}

type LoginsConfig struct {
	EventId int `yaml:"event_id,omitempty"`

	// Number of rows in the console summary tables.
	SummaryRows int `yaml:"summary_rows,omitempty"`

	// Chart geometry in pixels.
	ChartWidth  int `yaml:"chart_width,omitempty"`
	ChartHeight int `yaml:"chart_height,omitempty"`

	// Cell on the third sheet where the chart is anchored.
	ChartAnchor string `yaml:"chart_anchor,omitempty"`

	// Keep the intermediate CSV and PNG files after merging.
	KeepIntermediate bool `yaml:"keep_intermediate,omitempty"`
}

type ApiClientConfig struct {
	BaseUrl string `yaml:"base_url,omitempty"`
	ApiKey  string `yaml:"api_key,omitempty"`

	// Requests per second allowed against the service.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`

	// Timeout for each request in seconds.
	Timeout uint64 `yaml:"timeout,omitempty"`

	// Transport level retries. Zero disables retrying.
	Retries int `yaml:"retries,omitempty"`

	// Size of the lookup cache.
	CacheSize int `yaml:"cache_size,omitempty"`
}

type AbuseIPDBConfig struct {
	ApiClientConfig `yaml:",inline"`

	MaxAgeInDays int    `yaml:"max_age_in_days,omitempty"`
	IpColumn     string `yaml:"ip_column,omitempty"`
}

type VirusTotalConfig struct {
	ApiClientConfig `yaml:",inline"`

	Extensions StringArray `yaml:"extensions,omitempty"`

	// Number of detection names printed per finding.
	MaxNames int `yaml:"max_names,omitempty"`
}

type Config struct {
	Logging    *LoggingConfig    `yaml:"logging,omitempty"`
	Output     *OutputConfig     `yaml:"output,omitempty"`
	EventLog   *EventLogConfig   `yaml:"event_log,omitempty"`
	Logins     *LoginsConfig     `yaml:"logins,omitempty"`
	AbuseIPDB  *AbuseIPDBConfig  `yaml:"abuseipdb,omitempty"`
	VirusTotal *VirusTotalConfig `yaml:"virustotal,omitempty"`

	// Set by the loader from the command line.
	Verbose bool `yaml:"-"`
}
