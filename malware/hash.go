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
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/go-errors/errors"
)

// Streams the file through SHA256 so large binaries are never held
// in memory.
func HashFile(path string) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, 0)
	}
	defer fd.Close()

	hasher := sha256.New()
	_, err = io.Copy(hasher, fd)
	if err != nil {
		return "", errors.Wrap(err, 0)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
