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
	"io"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/go-errors/errors"
	"www.velocidex.com/golang/triage/utils"
)

const report_template = `# Files that were found malicious by Virus total
  ----------------------------------------------

{{range .}}## {{.Path}} :

` + "```js" + `
       * hash: {{.Hash}}
       * Verdict - Malicious\Suspicious
       * Detections - {{.Detections}} of {{.Engines}} engines
       * Possible names - {{.Names}}
` + "```" + `

{{end}}`

var report = template.Must(template.New("VT").Parse(report_template))

type reportEntry struct {
	Path       string
	Hash       string
	Detections int
	Engines    int
	Names      string
}

// Renders a markdown section for every detected file. Files that
// were not found or failed are left out.
func RenderReport(out io.Writer, results []*FileResult, max_names int) error {
	var entries []reportEntry
	for _, result := range results {
		if result.Verdict == nil || !result.Verdict.Detected() {
			continue
		}

		entries = append(entries, reportEntry{
			Path:       result.Path,
			Hash:       result.Hash,
			Detections: result.Verdict.Detections,
			Engines:    result.Verdict.Engines,
			Names: strings.Join(
				utils.FirstN(result.Verdict.Names, max_names), ", "),
		})
	}

	err := report.Execute(out, entries)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

func WriteReport(path string, results []*FileResult, max_names int) error {
	err := utils.EnsureDirectory(filepath.Dir(path))
	if err != nil {
		return err
	}

	return utils.WriteFile(path, func(w io.Writer) error {
		return RenderReport(w, results, max_names)
	})
}
