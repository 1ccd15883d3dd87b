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
	"path/filepath"

	"github.com/go-errors/errors"
	config_proto "www.velocidex.com/golang/triage/config/proto"
	"www.velocidex.com/golang/triage/constants"
	"www.velocidex.com/golang/triage/logging"
	"www.velocidex.com/golang/triage/utils"
)

// The outcome for one collected file. Verdict is nil when Err is
// set.
type FileResult struct {
	Path    string
	Hash    string
	Verdict *Verdict
	Err     error
}

type ScanSummary struct {
	Files    []*FileResult
	Detected int
	NotFound int
	Failed   int
	Report   string
}

// Hashes every matching file under root, looks it up and writes the
// markdown report into the output directory.
func Scan(ctx context.Context,
	config_obj *config_proto.Config,
	lookup Lookup, root string) (*ScanSummary, error) {
	logger := logging.GetLogger(config_obj, &logging.ScanComponent)

	files, err := CollectFiles(ctx, root, config_obj.VirusTotal.Extensions)
	if err != nil {
		return nil, err
	}
	logger.Info("vt_scan: %v files to check under %v", len(files), root)

	summary := &ScanSummary{
		Report: filepath.Join(config_obj.Output.Directory,
			constants.VT_REPORT_NAME),
	}

	for _, path := range files {
		result := &FileResult{Path: path}
		summary.Files = append(summary.Files, result)

		result.Hash, result.Err = HashFile(path)
		if result.Err != nil {
			summary.Failed++
			logger.Error("vt_scan: %v: %v", path, result.Err)
			continue
		}

		result.Verdict, result.Err = lookup.Lookup(ctx, result.Hash)
		switch {
		case result.Err == nil:
			if result.Verdict.Detected() {
				summary.Detected++
				logger.Warn("vt_scan: %v detected by %v engines",
					path, result.Verdict.Detections)
			}

		case errors.Is(result.Err, ErrNotFound):
			summary.NotFound++
			logger.Debug("vt_scan: %v (%v) not found", path, result.Hash)

		case utils.IsCancelled(result.Err):
			return summary, result.Err

		default:
			summary.Failed++
			logger.Error("vt_scan: %v: %v", path, result.Err)
		}
	}

	err = WriteReport(summary.Report, summary.Files,
		config_obj.VirusTotal.MaxNames)
	if err != nil {
		return summary, err
	}
	return summary, nil
}
