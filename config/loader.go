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
	"fmt"
	"os"

	"github.com/go-errors/errors"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
	"www.velocidex.com/golang/triage/logging"
)

// A hard error causes the loader to stop immediately.
type HardError struct {
	Err error
}

func (self HardError) Error() string {
	return self.Err.Error()
}

func (self HardError) Unwrap() error {
	return self.Err
}

type loaderFunction struct {
	name        string
	loader_func func(self *Loader) (*config_proto.Config, error)
}

type configMutator struct {
	name                string
	config_mutator_func func(self *config_proto.Config) error
}

type validatorFunction struct {
	name      string
	validator func(self *Loader, config_obj *config_proto.Config) error
}

// Loaders are tried in order until one succeeds. Mutators and
// validators then run on the loaded config.
type Loader struct {
	verbose, required_logging bool

	loaders         []loaderFunction
	config_mutators []configMutator
	validators      []validatorFunction

	logger *logging.LogContext
}

func (self *Loader) WithVerbose(verbose bool) *Loader {
	self = self.Copy()
	self.verbose = verbose
	return self
}

// If this is set we require logging to be properly
// initialized. Without this logging is directed to stderr only.
func (self *Loader) WithRequiredLogging() *Loader {
	self = self.Copy()
	self.required_logging = true
	return self
}

func (self *Loader) WithConfigMutator(
	name string,
	mutator func(self *config_proto.Config) error) *Loader {
	self = self.Copy()
	self.config_mutators = append(self.config_mutators, configMutator{
		name:                name,
		config_mutator_func: mutator,
	})
	return self
}

func (self *Loader) WithCustomValidator(
	name string,
	validator func(config_obj *config_proto.Config) error) *Loader {
	self = self.Copy()
	self.validators = append(self.validators, validatorFunction{
		name: name,
		validator: func(self *Loader, config_obj *config_proto.Config) error {
			return validator(config_obj)
		}})
	return self
}

func (self *Loader) WithDefaultLoader() *Loader {
	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "WithDefaultLoader",
		loader_func: func(self *Loader) (*config_proto.Config, error) {
			self.Log("Using default config")
			return &config_proto.Config{}, nil
		}})
	return self
}

func (self *Loader) WithFileLoader(filename string) *Loader {
	if filename == "" {
		return self
	}

	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "WithFileLoader",
		loader_func: func(self *Loader) (*config_proto.Config, error) {
			self.Log("Loading config from file %v", filename)
			result, err := read_config_from_file(filename)
			if err != nil {
				// If a filename is specified but it does not
				// exist or is invalid stop searching immediately.
				return nil, HardError{err}
			}
			return result, nil
		}})
	return self
}

func (self *Loader) WithLiteralLoader(serialized []byte) *Loader {
	if len(serialized) == 0 {
		return self
	}

	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "WithLiteralLoader",
		loader_func: func(self *Loader) (*config_proto.Config, error) {
			self.Log("Loading constant config")
			result, err := parse_config(serialized)
			if err != nil {
				return nil, HardError{err}
			}
			return result, nil
		}})
	return self
}

func (self *Loader) WithEnvLoader(env_var string) *Loader {
	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "WithEnvLoader",
		loader_func: func(self *Loader) (*config_proto.Config, error) {
			env_config := os.Getenv(env_var)
			if env_config != "" {
				self.Log("Loading config from env %v (%v)", env_var, env_config)
				return read_config_from_file(env_config)
			}
			return nil, fmt.Errorf("Env var %v is not set", env_var)
		}})
	return self
}

// Secrets are best kept out of config files so API keys and the
// output directory may also come from the environment.
func (self *Loader) WithEnvOverrides() *Loader {
	return self.WithConfigMutator("WithEnvOverrides",
		func(config_obj *config_proto.Config) error {
			key := os.Getenv(constants.TRIAGE_ABUSEIPDB_KEY)
			if key != "" {
				config_obj.AbuseIPDB.ApiKey = key
			}

			key = os.Getenv(constants.TRIAGE_VIRUSTOTAL_KEY)
			if key != "" {
				config_obj.VirusTotal.ApiKey = key
			}

			dir := os.Getenv(constants.TRIAGE_OUTPUT_DIRECTORY)
			if dir != "" {
				config_obj.Output.Directory = dir
			}
			return nil
		})
}

func (self *Loader) Copy() *Loader {
	return &Loader{
		verbose:          self.verbose,
		required_logging: self.required_logging,
		logger:           self.logger,
		loaders:          append([]loaderFunction{}, self.loaders...),
		validators:       append([]validatorFunction{}, self.validators...),
		config_mutators:  append([]configMutator{}, self.config_mutators...),
	}
}

func (self *Loader) Log(format string, v ...interface{}) {
	if self.logger == nil {
		logging.Prelog(format, v...)
	} else {
		self.logger.Info(format, v...)
	}
}

func (self *Loader) Validate(config_obj *config_proto.Config) error {
	config_obj.Verbose = self.verbose
	applyDefaults(config_obj)

	for _, mutator := range self.config_mutators {
		err := mutator.config_mutator_func(config_obj)
		if err != nil {
			return fmt.Errorf("%v: %w", mutator.name, err)
		}
	}

	// Initialize the logging and dump early messages into the
	// correct log destination.
	err := logging.InitLogging(config_obj)
	if err != nil && self.required_logging {
		return err
	}

	self.logger = logging.GetLogger(config_obj, &logging.ToolComponent)

	err = ValidateConfig(config_obj)
	if err != nil {
		return err
	}

	for _, validator := range self.validators {
		err = validator.validator(self, config_obj)
		if err != nil {
			self.Log("%v: %v", validator.name, err)
			return err
		}
	}

	return nil
}

func (self *Loader) LoadAndValidate() (*config_proto.Config, error) {
	for _, loader := range self.loaders {
		result, err := loader.loader_func(self)
		if err == nil {
			return result, self.Validate(result)
		}

		// Stop on hard errors.
		_, ok := err.(HardError)
		if ok {
			return nil, err
		}
		self.Log("%v", err)
	}
	return nil, errors.New("Unable to load config from any source.")
}

func NewLoader() *Loader {
	return &Loader{}
}
