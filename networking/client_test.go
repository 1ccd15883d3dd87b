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
package networking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/vtesting"
)

type ApiClientTestSuite struct {
	suite.Suite
	config_obj *config_proto.Config
	server     *httptest.Server
	hits       int64
	status     int
}

func (self *ApiClientTestSuite) SetupTest() {
	self.config_obj = vtesting.GetTestConfig(self.T(), self.T().TempDir())
	self.hits = 0
	self.status = http.StatusOK
	self.server = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&self.hits, 1)
			w.Header().Set("X-Seen-Key", r.Header.Get("Key"))
			w.WriteHeader(self.status)
			_, _ = w.Write([]byte("hello " + r.URL.Query().Get("q")))
		}))
}

func (self *ApiClientTestSuite) TearDownTest() {
	self.server.Close()
}

func (self *ApiClientTestSuite) client(retries int) *ApiClient {
	return NewApiClient(self.config_obj, &config_proto.ApiClientConfig{
		BaseUrl:   self.server.URL,
		Timeout:   5,
		Retries:   retries,
		CacheSize: 10,
	}, "test")
}

func (self *ApiClientTestSuite) TestGet() {
	client := self.client(0)
	defer client.Close()

	resp, err := client.Get(context.Background(),
		self.server.URL+"/?q=world", map[string]string{"Key": "secret"})
	require.NoError(self.T(), err)
	assert.Equal(self.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(self.T(), "hello world", string(resp.Body))
}

// Error statuses are passed back to the caller rather than turned
// into transport errors.
func (self *ApiClientTestSuite) TestStatusPassthrough() {
	self.status = http.StatusTooManyRequests
	client := self.client(0)
	defer client.Close()

	resp, err := client.Get(context.Background(), self.server.URL, nil)
	require.NoError(self.T(), err)
	assert.Equal(self.T(), http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(self.T(), int64(1), atomic.LoadInt64(&self.hits))
}

func (self *ApiClientTestSuite) TestCached() {
	client := self.client(0)
	defer client.Close()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		value, err := client.Cached("1.2.3.4", fetch)
		require.NoError(self.T(), err)
		assert.Equal(self.T(), "value", value)
	}
	assert.Equal(self.T(), 1, calls)
}

func (self *ApiClientTestSuite) TestCancelled() {
	client := self.client(0)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, self.server.URL, nil)
	assert.Error(self.T(), err)
	assert.Equal(self.T(), int64(0), atomic.LoadInt64(&self.hits))
}

func TestApiClient(t *testing.T) {
	suite.Run(t, &ApiClientTestSuite{})
}
