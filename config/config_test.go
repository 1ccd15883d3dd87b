package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
)

type ConfigTestSuite struct {
	suite.Suite
}

func (self *ConfigTestSuite) TestDefaults() {
	config_obj, err := NewLoader().WithDefaultLoader().LoadAndValidate()
	require.NoError(self.T(), err)

	assert.Equal(self.T(), 4625, config_obj.Logins.EventId)
	assert.Equal(self.T(), "D1", config_obj.Logins.ChartAnchor)
	assert.Equal(self.T(), 90, config_obj.AbuseIPDB.MaxAgeInDays)
	assert.Equal(self.T(), "IP", config_obj.AbuseIPDB.IpColumn)
	assert.Equal(self.T(), []string{"exe", "dll", "lnk"},
		[]string(config_obj.VirusTotal.Extensions))
	assert.Equal(self.T(), 0, config_obj.VirusTotal.Retries)
	assert.Equal(self.T(), "evtx", config_obj.EventLog.Type)
}

func (self *ConfigTestSuite) TestFileLoader() {
	config_obj, err := NewLoader().
		WithFileLoader("test_data/triage.yaml").
		WithDefaultLoader().
		LoadAndValidate()
	require.NoError(self.T(), err)

	assert.Equal(self.T(), "/cases/host01", config_obj.Output.Directory)
	assert.Equal(self.T(), "jsonl", config_obj.EventLog.Type)

	// A single string is accepted for a list.
	assert.Equal(self.T(), []string{"exe"},
		[]string(config_obj.VirusTotal.Extensions))
	assert.Equal(self.T(), float64(2), config_obj.VirusTotal.RequestsPerSecond)

	// Unspecified sections still get their defaults.
	assert.Equal(self.T(), 1200, config_obj.Logins.ChartWidth)

	loc, err := GetLocation(config_obj)
	require.NoError(self.T(), err)
	assert.Equal(self.T(), "UTC", loc.String())
}

func (self *ConfigTestSuite) TestMissingFileIsHardError() {
	_, err := NewLoader().
		WithFileLoader("test_data/does_not_exist.yaml").
		WithDefaultLoader().
		LoadAndValidate()
	require.Error(self.T(), err)

	var hard HardError
	assert.True(self.T(), errors.As(err, &hard))
}

func (self *ConfigTestSuite) TestStrictParsing() {
	_, err := NewLoader().
		WithLiteralLoader([]byte("output:\n  directry: /tmp\n")).
		WithDefaultLoader().
		LoadAndValidate()
	assert.Error(self.T(), err)
}

func (self *ConfigTestSuite) TestEnvLoaderFallsThrough() {
	os.Unsetenv(constants.TRIAGE_CONFIG)

	config_obj, err := NewLoader().
		WithEnvLoader(constants.TRIAGE_CONFIG).
		WithDefaultLoader().
		LoadAndValidate()
	require.NoError(self.T(), err)
	assert.Equal(self.T(), 4625, config_obj.Logins.EventId)
}

func (self *ConfigTestSuite) TestEnvOverrides() {
	self.T().Setenv(constants.TRIAGE_VIRUSTOTAL_KEY, "vt-secret")
	self.T().Setenv(constants.TRIAGE_OUTPUT_DIRECTORY, "/evidence")

	config_obj, err := NewLoader().
		WithDefaultLoader().
		WithEnvOverrides().
		LoadAndValidate()
	require.NoError(self.T(), err)

	assert.Equal(self.T(), "vt-secret", config_obj.VirusTotal.ApiKey)
	assert.Equal(self.T(), "", config_obj.AbuseIPDB.ApiKey)
	assert.Equal(self.T(), "/evidence", config_obj.Output.Directory)
}

func (self *ConfigTestSuite) TestValidation() {
	_, err := NewLoader().
		WithLiteralLoader([]byte("output:\n  timezone: Mars/Olympus\n")).
		LoadAndValidate()
	assert.Error(self.T(), err)

	_, err = NewLoader().
		WithLiteralLoader([]byte("event_log:\n  type: wmi\n")).
		LoadAndValidate()
	assert.Error(self.T(), err)

	_, err = NewLoader().
		WithDefaultLoader().
		WithCustomValidator("RequireKey", func(config_obj *config_proto.Config) error {
			return nil
		}).
		LoadAndValidate()
	assert.NoError(self.T(), err)
}

func (self *ConfigTestSuite) TestRequiredLogging() {
	// The log directory can not be created under a regular file.
	blocker := filepath.Join(self.T().TempDir(), "blocker")
	require.NoError(self.T(), os.WriteFile(blocker, []byte("x"), 0600))

	serialized := []byte("logging:\n  output_directory: " +
		filepath.ToSlash(filepath.Join(blocker, "logs")) + "\n")

	_, err := NewLoader().
		WithLiteralLoader(serialized).
		WithRequiredLogging().
		LoadAndValidate()
	require.Error(self.T(), err)
	assert.Contains(self.T(), err.Error(), "Unable to create log directory")

	// Without the requirement the tool falls back to stderr.
	_, err = NewLoader().
		WithLiteralLoader(serialized).
		LoadAndValidate()
	assert.NoError(self.T(), err)
}

func (self *ConfigTestSuite) TestEncodeRoundTrip() {
	config_obj := GetDefaultConfig()
	serialized, err := Encode(config_obj)
	require.NoError(self.T(), err)

	loaded, err := NewLoader().WithLiteralLoader(serialized).LoadAndValidate()
	require.NoError(self.T(), err)
	assert.Equal(self.T(), config_obj.VirusTotal.Extensions,
		loaded.VirusTotal.Extensions)
}

func TestConfig(t *testing.T) {
	suite.Run(t, &ConfigTestSuite{})
}
