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
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	config_proto "www.velocidex.com/golang/triage/config/proto"
)

// Logs every request sent to a remote service. API keys travel in
// headers so only the method, host, path and status are recorded.
type loggingTransport struct {
	next   http.RoundTripper
	logger *LogContext
}

func (self *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := self.next.RoundTrip(r)

	fields := logrus.Fields{
		"method":   r.Method,
		"host":     r.URL.Host,
		"path":     r.URL.Path,
		"duration": time.Since(start).String(),
	}
	if err != nil {
		self.logger.WithFields(fields).Debug(err.Error())
		return resp, err
	}

	fields["status"] = resp.StatusCode
	self.logger.WithFields(fields).Debug("request complete")
	return resp, err
}

func GetLoggingTransport(
	config_obj *config_proto.Config,
	next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &loggingTransport{
		next:   next,
		logger: GetLogger(config_obj, &NetworkComponent),
	}
}
