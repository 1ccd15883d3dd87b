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
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/Velocidex/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	config_proto "www.velocidex.com/golang/triage/config/proto"
)

var (
	ToolComponent    = "TriageTool"
	ScanComponent    = "TriageScan"
	NetworkComponent = "TriageNetwork"

	Manager = NewLogManager()

	// Messages logged before the config is loaded are kept here
	// and flushed once logging is initialized.
	prelog_mu sync.Mutex
	prelogs   []string

	memory_mu   sync.Mutex
	memory_logs []string
	max_memory  = 1000
)

type LogContext struct {
	*logrus.Entry
}

func (self *LogContext) Debug(format string, v ...interface{}) {
	self.Entry.Debug(fmt.Sprintf(format, v...))
}

func (self *LogContext) Info(format string, v ...interface{}) {
	self.Entry.Info(fmt.Sprintf(format, v...))
}

func (self *LogContext) Warn(format string, v ...interface{}) {
	self.Entry.Warn(fmt.Sprintf(format, v...))
}

func (self *LogContext) Error(format string, v ...interface{}) {
	self.Entry.Error(fmt.Sprintf(format, v...))
}

type LogManager struct {
	mu       sync.Mutex
	level    logrus.Level
	out      io.Writer
	contexts map[*string]*LogContext
	hooks    map[*string][]logrus.Hook
}

func NewLogManager() *LogManager {
	return &LogManager{
		level:    logrus.InfoLevel,
		out:      os.Stderr,
		contexts: make(map[*string]*LogContext),
		hooks:    make(map[*string][]logrus.Hook),
	}
}

func (self *LogManager) Reset() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.level = logrus.InfoLevel
	self.out = os.Stderr
	self.contexts = make(map[*string]*LogContext)
	self.hooks = make(map[*string][]logrus.Hook)
}

func (self *LogManager) SetLevel(level logrus.Level) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.level = level
	for _, ctx := range self.contexts {
		ctx.Logger.SetLevel(level)
	}
}

func (self *LogManager) SetOutput(out io.Writer) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.out = out
	for _, ctx := range self.contexts {
		ctx.Logger.SetOutput(out)
	}
}

func (self *LogManager) AddHook(hook logrus.Hook, component *string) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.hooks[component] = append(self.hooks[component], hook)
	ctx, pres := self.contexts[component]
	if pres {
		ctx.Logger.AddHook(hook)
	}
}

func (self *LogManager) GetLogger(component *string) *LogContext {
	self.mu.Lock()
	defer self.mu.Unlock()

	ctx, pres := self.contexts[component]
	if pres {
		return ctx
	}

	logger := logrus.New()
	logger.SetOutput(self.out)
	logger.SetLevel(self.level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logger.AddHook(memoryHook{})
	for _, hook := range self.hooks[component] {
		logger.AddHook(hook)
	}

	ctx = &LogContext{
		Entry: logger.WithField("component", *component),
	}
	self.contexts[component] = ctx
	return ctx
}

func GetLogger(config_obj *config_proto.Config, component *string) *LogContext {
	return Manager.GetLogger(component)
}

// Log a message before the logging system is configured.
func Prelog(format string, v ...interface{}) {
	prelog_mu.Lock()
	defer prelog_mu.Unlock()

	prelogs = append(prelogs, fmt.Sprintf(format, v...))
}

func FlushPrelogs(config_obj *config_proto.Config) {
	prelog_mu.Lock()
	pending := prelogs
	prelogs = nil
	prelog_mu.Unlock()

	logger := GetLogger(config_obj, &ToolComponent)
	for _, msg := range pending {
		logger.Debug("%s", msg)
	}
}

func InitLogging(config_obj *config_proto.Config) error {
	Manager.Reset()

	if config_obj.Verbose ||
		(config_obj.Logging != nil && config_obj.Logging.Debug) {
		Manager.SetLevel(logrus.DebugLevel)
	}

	if config_obj.Logging != nil &&
		config_obj.Logging.OutputDirectory != "" {
		for _, component := range []*string{
			&ToolComponent, &ScanComponent, &NetworkComponent} {
			hook, err := getFileHook(config_obj.Logging, *component)
			if err != nil {
				return err
			}
			Manager.AddHook(hook, component)
		}
	}

	FlushPrelogs(config_obj)
	return nil
}

func getFileHook(
	config_obj *config_proto.LoggingConfig,
	component string) (logrus.Hook, error) {
	err := os.MkdirAll(config_obj.OutputDirectory, 0700)
	if err != nil {
		return nil, fmt.Errorf("Unable to create log directory: %w", err)
	}

	rotation := config_obj.RotationTime
	if rotation == 0 {
		rotation = 604800 // 7 days
	}

	max_age := config_obj.MaxAge
	if max_age == 0 {
		max_age = 31536000 // 365 days
	}

	base_filename := filepath.Join(config_obj.OutputDirectory,
		strings.ToLower(component)+".log")

	writer, err := rotatelogs.New(
		base_filename+".%Y%m%d",
		rotatelogs.WithLinkName(base_filename),
		rotatelogs.WithRotationTime(time.Duration(rotation)*time.Second),
		rotatelogs.WithMaxAge(time.Duration(max_age)*time.Second))
	if err != nil {
		return nil, err
	}

	return lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.JSONFormatter{
		DisableHTMLEscape: true,
	}), nil
}

// Keeps the most recent log lines in memory so tests can inspect
// them.
type memoryHook struct{}

func (self memoryHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (self memoryHook) Fire(entry *logrus.Entry) error {
	component, _ := entry.Data["component"].(string)
	line := fmt.Sprintf("[%s] %s: %s",
		strings.ToUpper(entry.Level.String()), component, entry.Message)

	memory_mu.Lock()
	defer memory_mu.Unlock()

	memory_logs = append(memory_logs, line)
	if len(memory_logs) > max_memory {
		memory_logs = memory_logs[len(memory_logs)-max_memory:]
	}
	return nil
}

func GetMemoryLogs() []string {
	memory_mu.Lock()
	defer memory_mu.Unlock()

	return append([]string{}, memory_logs...)
}

func ClearMemoryLogs() {
	memory_mu.Lock()
	defer memory_mu.Unlock()

	memory_logs = nil
}
