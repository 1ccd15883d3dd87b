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
// Package malware hashes executable files found during triage and
// looks them up on VirusTotal.
package malware

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-errors/errors"
	"www.velocidex.com/golang/triage/utils"
)

// Builds a pattern matching any of the extensions at any depth.
func ExtensionPattern(extensions []string) (string, error) {
	var cleaned []string
	for _, ext := range extensions {
		ext = utils.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			cleaned = append(cleaned, ext)
		}
	}
	cleaned = utils.Uniquify(cleaned)

	switch len(cleaned) {
	case 0:
		return "", errors.New("no file extensions configured")
	case 1:
		return "**/*." + cleaned[0], nil
	}

	pattern := "**/*.{" + strings.Join(cleaned, ",") + "}"
	if !doublestar.ValidatePattern(pattern) {
		return "", errors.Errorf("invalid extension list %v", extensions)
	}
	return pattern, nil
}

// Walks root recursively and returns the regular files whose
// extension is in the list, in lexical order. Matching ignores case.
func CollectFiles(ctx context.Context,
	root string, extensions []string) ([]string, error) {
	pattern, err := ExtensionPattern(extensions)
	if err != nil {
		return nil, err
	}

	var result []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		err = ctx.Err()
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		match, err := doublestar.Match(pattern, utils.ToLower(filepath.ToSlash(rel)))
		if err != nil {
			return err
		}
		if match {
			result = append(result, path)
		}
		return nil
	})
	if err != nil {
		if utils.IsCancelled(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, 0)
	}

	sort.Strings(result)
	return result, nil
}
