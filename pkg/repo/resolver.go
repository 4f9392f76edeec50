/*
   SF2Conv - SID to SID Factory II converter
   Copyright (c) 2026, the SF2Conv authors

   This file is part of SF2Conv.

   SF2Conv is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   SF2Conv is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with SF2Conv. If not, see <http://www.gnu.org/licenses/>.
*/

/*
	Package repo resolves driver template references. A reference of
	the form 'repo://name' is looked up inside the configured template
	repository folder; plain paths are refused so that API clients
	cannot read arbitrary files from the server's file system.
*/
package repo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

//
const PrefixRepoRef = "repo://"

//
func newFileSource(file string) (*fileSource, error) {
	if f, err := os.Open(file); err != nil {
		return nil, err
	} else {
		return &fileSource{file: f, reader: bufio.NewReader(f)}, nil
	}
}

//
type fileSource struct {
	file   *os.File
	reader io.Reader
}

//
func (fs *fileSource) Read(p []byte) (n int, err error) {
	return fs.reader.Read(p)
}

//
func (fs *fileSource) Close() error {
	return fs.file.Close()
}

//
func Resolve(ref, repo string) (io.ReadCloser, error) {

	log.WithFields(log.Fields{
		"reference":  ref,
		"repository": repo,
	}).Debug("resolving template ref")

	if strings.HasPrefix(ref, PrefixRepoRef) {
		if repo == "" {
			return nil, fmt.Errorf("template repository is not enabled")
		}
		name := filepath.Clean(ref[len(PrefixRepoRef):])
		if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("template reference escapes repository")
		}
		return newFileSource(filepath.Join(repo, name))
	}

	return nil, fmt.Errorf("unsupported template reference %q", ref)
}

//
func IsReference(r string) bool {
	return strings.HasPrefix(r, PrefixRepoRef)
}
