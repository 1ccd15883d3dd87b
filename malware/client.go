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
package malware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Velocidex/json"
	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/networking"
	"www.velocidex.com/golang/triage/utils"
)

var (
	// The service has never seen the file.
	ErrNotFound = errors.New("hash not known to VirusTotal")
)

type Lookup interface {
	Lookup(ctx context.Context, hash string) (*Verdict, error)
}

type VirusTotalClient struct {
	config_obj *config_proto.VirusTotalConfig
	client     *networking.ApiClient
	logger     *logging.LogContext
}

func (self *VirusTotalClient) Close() {
	self.client.Close()
}

// Identical files share a hash so each hash is only fetched once.
func (self *VirusTotalClient) Lookup(
	ctx context.Context, hash string) (*Verdict, error) {
	value, err := self.client.Cached(hash, func() (interface{}, error) {
		return self.lookup(ctx, hash)
	})
	if err != nil {
		return nil, err
	}
	return value.(*Verdict), nil
}

func (self *VirusTotalClient) lookup(
	ctx context.Context, hash string) (*Verdict, error) {
	if self.config_obj.ApiKey == "" {
		return nil, errors.New("VirusTotal api key is not configured")
	}

	resp, err := self.client.Get(ctx,
		strings.TrimSuffix(self.config_obj.BaseUrl, "/")+"/api/v3/files/"+hash,
		map[string]string{"x-apikey": self.config_obj.ApiKey})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	document := ordereddict.NewDict()
	err = json.Unmarshal(resp.Body, &document)
	if err != nil && resp.StatusCode == http.StatusOK {
		return nil, errors.Wrap(err, 0)
	}

	if resp.StatusCode != http.StatusOK {
		message := utils.GetString(document, "error.message")
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		self.logger.Error("vt_scan: %v: %v", hash, message)
		return nil, errors.Errorf("%s: HTTP %d: %s", hash, resp.StatusCode, message)
	}

	attributes, pres := utils.GetPath(document, "data.attributes")
	if !pres {
		return nil, errors.Errorf("%s: response has no attributes", hash)
	}

	return NewVerdict(hash, attributes), nil
}

func NewVirusTotalClient(config_obj *config_proto.Config) *VirusTotalClient {
	return &VirusTotalClient{
		config_obj: config_obj.VirusTotal,
		client: networking.NewApiClient(config_obj,
			&config_obj.VirusTotal.ApiClientConfig, "VirusTotal"),
		logger: logging.GetLogger(config_obj, &logging.NetworkComponent),
	}
}
