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
// Package reputation looks up source addresses against the AbuseIPDB
// reputation service.
package reputation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Velocidex/json"
	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/networking"
	"www.velocidex.com/golang/triage/utils"
)

var (
	// The service refuses further lookups for the day.
	ErrQuota = errors.New("AbuseIPDB quota exhausted")

	// Columns written for each checked address.
	ReportColumns = []string{
		"ipAddress", "isPublic", "ipVersion", "isWhitelisted",
		"abuseConfidenceScore", "countryCode", "usageType", "isp",
		"domain", "hostnames", "totalReports", "numDistinctUsers",
		"lastReportedAt",
	}
)

// The outcome of checking one address. Exactly one of Value and Err
// is set.
type Result struct {
	IP    string
	Value *ordereddict.Dict
	Err   error
}

// Renders the result in ReportColumns order.
func (self *Result) Row() []string {
	result := make([]string, 0, len(ReportColumns))
	for _, column := range ReportColumns {
		value, _ := utils.GetPath(self.Value, column)
		result = append(result, formatValue(value))
	}
	return result
}

func formatValue(value interface{}) string {
	switch t := value.(type) {
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, utils.ToString(item))
		}
		return strings.Join(parts, ";")

	case []string:
		return strings.Join(t, ";")
	}

	if utils.IsNil(value) {
		return ""
	}
	return utils.ToString(value)
}

type AbuseIPDBClient struct {
	config_obj *config_proto.AbuseIPDBConfig
	client     *networking.ApiClient
}

func (self *AbuseIPDBClient) Close() {
	self.client.Close()
}

// Checks a single address. Repeated addresses are answered from the
// lookup cache.
func (self *AbuseIPDBClient) Check(ctx context.Context, ip string) *Result {
	value, err := self.client.Cached(ip, func() (interface{}, error) {
		return self.check(ctx, ip)
	})
	if err != nil {
		return &Result{IP: ip, Err: err}
	}
	return &Result{IP: ip, Value: value.(*ordereddict.Dict)}
}

func (self *AbuseIPDBClient) check(
	ctx context.Context, ip string) (*ordereddict.Dict, error) {
	if self.config_obj.ApiKey == "" {
		return nil, errors.New("AbuseIPDB api key is not configured")
	}

	query := url.Values{}
	query.Set("ipAddress", ip)
	query.Set("maxAgeInDays", strconv.Itoa(self.config_obj.MaxAgeInDays))

	resp, err := self.client.Get(ctx,
		strings.TrimSuffix(self.config_obj.BaseUrl, "/")+
			"/api/v2/check?"+query.Encode(),
		map[string]string{
			"Accept": "application/json",
			"Key":    self.config_obj.ApiKey,
		})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrQuota
	default:
		return nil, fmt.Errorf("%s: %w", ip, apiError(resp))
	}

	document := ordereddict.NewDict()
	err = json.Unmarshal(resp.Body, &document)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	data, pres := utils.GetPath(document, "data")
	if !pres {
		return nil, errors.Errorf("%s: response has no data", ip)
	}

	switch t := data.(type) {
	case *ordereddict.Dict:
		return t, nil
	case map[string]interface{}:
		result := ordereddict.NewDict()
		for _, column := range ReportColumns {
			value, pres := t[column]
			if pres {
				result.Set(column, value)
			}
		}
		return result, nil
	}
	return nil, errors.Errorf("%s: unexpected data %T", ip, data)
}

// AbuseIPDB reports failures as a list of errors with a detail.
func apiError(resp *networking.Response) error {
	document := ordereddict.NewDict()
	err := json.Unmarshal(resp.Body, &document)
	if err == nil {
		errs, _ := utils.GetPath(document, "errors")
		list, ok := errs.([]interface{})
		if ok && len(list) > 0 {
			detail := utils.GetString(list[0], "detail")
			if detail != "" {
				return errors.Errorf("HTTP %d: %s", resp.StatusCode, detail)
			}
		}
	}
	return errors.Errorf("HTTP %d", resp.StatusCode)
}

func NewAbuseIPDBClient(config_obj *config_proto.Config) *AbuseIPDBClient {
	return &AbuseIPDBClient{
		config_obj: config_obj.AbuseIPDB,
		client: networking.NewApiClient(config_obj,
			&config_obj.AbuseIPDB.ApiClientConfig, "AbuseIPDB"),
	}
}
