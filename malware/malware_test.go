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
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/vtesting"
	"www.velocidex.com/golang/triage/vtesting/goldie"
)

const (
	detectedResponse = `{"data": {"attributes": {"last_analysis_results": {
  "EngineB": {"category": "malicious", "engine_name": "EngineB", "result": "Trojan.Gen"},
  "EngineA": {"category": "undetected", "engine_name": "EngineA", "result": null},
  "EngineC": {"category": "suspicious", "engine_name": "EngineC", "result": "Trojan.Gen"},
  "EngineD": {"category": "malicious", "engine_name": "EngineD", "result": "Win32.Agent"}
}}}}`

	cleanResponse = `{"data": {"attributes": {"last_analysis_results": {
  "EngineA": {"category": "undetected", "engine_name": "EngineA", "result": null},
  "EngineB": {"category": "harmless", "engine_name": "EngineB", "result": null}
}}}}`

	notFoundResponse = `{"error": {"code": "NotFoundError", "message": "File not found"}}`
	badKeyResponse   = `{"error": {"code": "WrongCredentialsError", "message": "Wrong API key"}}`
)

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

type MalwareTestSuite struct {
	suite.Suite
	config_obj *config_proto.Config
	server     *httptest.Server
	dir        string

	mu        sync.Mutex
	responses map[string]string
	requests  map[string]int
}

func (self *MalwareTestSuite) SetupTest() {
	logging.ClearMemoryLogs()
	self.dir = self.T().TempDir()
	self.requests = make(map[string]int)
	self.responses = map[string]string{
		sha256Hex("evil"):  detectedResponse,
		sha256Hex("clean"): cleanResponse,
	}

	self.server = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			hash := strings.TrimPrefix(r.URL.Path, "/api/v3/files/")

			self.mu.Lock()
			self.requests[hash]++
			response, pres := self.responses[hash]
			self.mu.Unlock()

			switch {
			case r.Header.Get("x-apikey") != "test-key":
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(badKeyResponse))
			case !pres:
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(notFoundResponse))
			default:
				_, _ = w.Write([]byte(response))
			}
		}))

	self.config_obj = vtesting.GetTestConfig(self.T(), filepath.Join(self.dir, "out"))
	self.config_obj.VirusTotal.BaseUrl = self.server.URL
	self.config_obj.VirusTotal.ApiKey = "test-key"
	self.config_obj.VirusTotal.RequestsPerSecond = 0
}

func (self *MalwareTestSuite) TearDownTest() {
	self.server.Close()
}

func (self *MalwareTestSuite) writeTree() string {
	root := filepath.Join(self.dir, "tree")
	vtesting.WriteFile(self.T(), root, "a/evil.EXE", "evil")
	vtesting.WriteFile(self.T(), root, "a/b/copy.exe", "evil")
	vtesting.WriteFile(self.T(), root, "clean.dll", "clean")
	vtesting.WriteFile(self.T(), root, "unknown.lnk", "unknown")
	vtesting.WriteFile(self.T(), root, "notes.txt", "evil")
	vtesting.WriteFile(self.T(), root, "exe", "evil")
	return root
}

func (self *MalwareTestSuite) TestCollect() {
	root := self.writeTree()

	files, err := CollectFiles(context.Background(), root,
		[]string{"exe", ".DLL", "lnk"})
	require.NoError(self.T(), err)

	assert.Equal(self.T(), []string{
		filepath.Join(root, "a", "b", "copy.exe"),
		filepath.Join(root, "a", "evil.EXE"),
		filepath.Join(root, "clean.dll"),
		filepath.Join(root, "unknown.lnk"),
	}, files)

	_, err = CollectFiles(context.Background(), root, nil)
	assert.Error(self.T(), err)
}

func (self *MalwareTestSuite) TestHash() {
	path := vtesting.WriteFile(self.T(), self.dir, "hello.exe", "hello")

	hash, err := HashFile(path)
	require.NoError(self.T(), err)
	assert.Equal(self.T(),
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)

	_, err = HashFile(filepath.Join(self.dir, "missing.exe"))
	assert.Error(self.T(), err)
}

func (self *MalwareTestSuite) TestLookup() {
	client := NewVirusTotalClient(self.config_obj)
	defer client.Close()

	verdict, err := client.Lookup(context.Background(), sha256Hex("evil"))
	require.NoError(self.T(), err)
	assert.True(self.T(), verdict.Detected())
	assert.Equal(self.T(), 4, verdict.Engines)
	assert.Equal(self.T(), 3, verdict.Detections)
	assert.Equal(self.T(), []string{"Trojan.Gen", "Win32.Agent"}, verdict.Names)

	verdict, err = client.Lookup(context.Background(), sha256Hex("clean"))
	require.NoError(self.T(), err)
	assert.False(self.T(), verdict.Detected())
	assert.Equal(self.T(), 2, verdict.Engines)

	_, err = client.Lookup(context.Background(), sha256Hex("unknown"))
	assert.True(self.T(), errors.Is(err, ErrNotFound))
}

func (self *MalwareTestSuite) TestLookupError() {
	self.config_obj.VirusTotal.ApiKey = "wrong"
	client := NewVirusTotalClient(self.config_obj)
	defer client.Close()

	_, err := client.Lookup(context.Background(), sha256Hex("evil"))
	require.Error(self.T(), err)
	assert.Contains(self.T(), err.Error(), "Wrong API key")
	assert.False(self.T(), errors.Is(err, ErrNotFound))
	vtesting.MemoryLogsContain(self.T(), "vt_scan: [0-9a-f]+: Wrong API key")
}

func (self *MalwareTestSuite) TestScan() {
	root := self.writeTree()
	client := NewVirusTotalClient(self.config_obj)
	defer client.Close()

	summary, err := Scan(context.Background(), self.config_obj, client, root)
	require.NoError(self.T(), err)

	assert.Equal(self.T(), 4, len(summary.Files))
	assert.Equal(self.T(), 2, summary.Detected)
	assert.Equal(self.T(), 1, summary.NotFound)
	assert.Equal(self.T(), 0, summary.Failed)

	// Both copies of the same file share one lookup.
	assert.Equal(self.T(), 1, self.requests[sha256Hex("evil")])

	report := string(vtesting.ReadFile(self.T(), summary.Report))
	assert.Contains(self.T(), report, filepath.Join(root, "a", "evil.EXE"))
	assert.Contains(self.T(), report, filepath.Join(root, "a", "b", "copy.exe"))
	assert.NotContains(self.T(), report, "clean.dll")
	assert.NotContains(self.T(), report, "unknown.lnk")
}

func (self *MalwareTestSuite) TestCancelled() {
	root := self.writeTree()
	client := NewVirusTotalClient(self.config_obj)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, self.config_obj, client, root)
	assert.True(self.T(), errors.Is(err, context.Canceled))
}

func TestMalware(t *testing.T) {
	suite.Run(t, &MalwareTestSuite{})
}

func TestReport(t *testing.T) {
	results := []*FileResult{
		{
			Path: `C:\Windows\Tasks\evil.exe`,
			Hash: sha256Hex("evil"),
			Verdict: &Verdict{
				Engines:    70,
				Detections: 5,
				Names: []string{"Trojan.Gen", "Win32.Agent",
					"Backdoor.X", "Generic.Y"},
			},
		},
		{
			Path:    `C:\Windows\Tasks\clean.dll`,
			Hash:    sha256Hex("clean"),
			Verdict: &Verdict{Engines: 70},
		},
		{
			Path: `C:\Windows\Tasks\unknown.lnk`,
			Hash: sha256Hex("unknown"),
			Err:  ErrNotFound,
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, RenderReport(buf, results, 3))
	goldie.Assert(t, "TestReport", buf.Bytes())
}

func (self *MalwareTestSuite) TestVerdict() {
	attributes := map[string]interface{}{
		"last_analysis_results": map[string]interface{}{
			"EngineD": map[string]interface{}{"category": "malicious", "result": "Win32.Agent"},
			"EngineA": map[string]interface{}{"category": "undetected"},
			"EngineC": map[string]interface{}{"category": "malicious", "result": "Trojan.Gen"},
			"EngineB": map[string]interface{}{"category": "suspicious", "result": "Trojan.Gen"},
		},
	}

	goldie.AssertJson(self.T(), "TestVerdict", NewVerdict("abc", attributes))
}
