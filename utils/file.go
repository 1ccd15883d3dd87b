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
package utils

import (
	"io"
	"os"

	errors "github.com/go-errors/errors"
)

// True if the file does not exist or holds no data yet. Writers
// that append use this to decide whether a header is needed.
func IsEmptyFile(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.Wrap(err, 0)
	}
	return stat.Size() == 0, nil
}

func EnsureDirectory(path string) error {
	err := os.MkdirAll(path, 0700)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// Removes all the files, returning the first error. Files that are
// already gone are not an error.
func RemoveFiles(paths ...string) error {
	var first_err error
	for _, path := range paths {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) && first_err == nil {
			first_err = errors.Wrap(err, 0)
		}
	}
	return first_err
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Runs write against fd and always closes it. A failed close means
// buffered data never reached the file so it is reported too.
func WriteAndClose(fd io.WriteCloser, write func(w io.Writer) error) error {
	err := write(fd)
	close_err := fd.Close()
	if err != nil {
		return err
	}
	if close_err != nil {
		return errors.Wrap(close_err, 0)
	}
	return nil
}

// Creates or truncates path and fills it through write.
func WriteFile(path string, write func(w io.Writer) error) error {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return WriteAndClose(fd, write)
}
