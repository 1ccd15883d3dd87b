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
// Package networking holds the HTTP client shared by the remote
// lookup services.
package networking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Velocidex/ttlcache/v2"
	"github.com/go-errors/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/juju/ratelimit"
	"github.com/sirupsen/logrus"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/utils"
)

const (
	max_body_size = 10 * 1024 * 1024
)

type Response struct {
	StatusCode int
	Body       []byte
}

// Rate limits requests to one service and remembers lookup results
// so duplicate keys only hit the network once.
type ApiClient struct {
	name   string
	config *config_proto.ApiClientConfig
	client *retryablehttp.Client
	bucket *ratelimit.Bucket
	lru    *ttlcache.Cache
	logger *logging.LogContext
}

func (self *ApiClient) Config() *config_proto.ApiClientConfig {
	return self.config
}

// Blocks until the rate limit allows another request.
func (self *ApiClient) wait(ctx context.Context) error {
	if self.bucket == nil {
		return ctx.Err()
	}
	return utils.SleepWithCtx(ctx, self.bucket.Take(1))
}

func (self *ApiClient) Get(ctx context.Context, url string,
	headers map[string]string) (*Response, error) {
	err := self.wait(ctx)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := self.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", self.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, max_body_size))
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Returns the cached value for key or calls fetch and caches its
// result. Errors are not cached.
func (self *ApiClient) Cached(key string,
	fetch func() (interface{}, error)) (interface{}, error) {
	value, err := self.lru.Get(key)
	if err == nil {
		self.logger.Debug("%s: %v served from cache", self.name, key)
		return value, nil
	}

	value, err = fetch()
	if err != nil {
		return nil, err
	}

	_ = self.lru.Set(key, value)
	return value, nil
}

func (self *ApiClient) Close() {
	_ = self.lru.Close()
}

// Routes retryablehttp's messages to our logger.
type retryLogger struct {
	logger *logging.LogContext
}

func (self retryLogger) fields(keysAndValues []interface{}) logrus.Fields {
	result := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		result[utils.ToString(keysAndValues[i])] = keysAndValues[i+1]
	}
	return result
}

func (self retryLogger) Error(msg string, keysAndValues ...interface{}) {
	self.logger.WithFields(self.fields(keysAndValues)).Error(msg)
}

func (self retryLogger) Info(msg string, keysAndValues ...interface{}) {
	self.logger.WithFields(self.fields(keysAndValues)).Info(msg)
}

func (self retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	self.logger.WithFields(self.fields(keysAndValues)).Debug(msg)
}

func (self retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	self.logger.WithFields(self.fields(keysAndValues)).Warn(msg)
}

func NewApiClient(
	config_obj *config_proto.Config,
	client_config *config_proto.ApiClientConfig,
	name string) *ApiClient {
	logger := logging.GetLogger(config_obj, &logging.NetworkComponent)

	client := retryablehttp.NewClient()
	client.RetryMax = client_config.Retries
	client.Logger = retryLogger{logger: logger}

	// Hand the final response back so callers can interpret the
	// status themselves.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient = &http.Client{
		Timeout:   time.Duration(client_config.Timeout) * time.Second,
		Transport: logging.GetLoggingTransport(config_obj, nil),
	}

	result := &ApiClient{
		name:   name,
		config: client_config,
		client: client,
		lru:    ttlcache.NewCache(),
		logger: logger,
	}

	if client_config.CacheSize > 0 {
		result.lru.SetCacheSizeLimit(client_config.CacheSize)
	}

	if client_config.RequestsPerSecond > 0 {
		result.bucket = ratelimit.NewBucketWithRate(
			client_config.RequestsPerSecond, 1)
	}

	return result
}
