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

package run

import (
	"fmt"
	"io"
	"os"
)

//
func NewStatus() *Status {

	s := &Status{}
	s.Runner = *NewRunner(
		"status [-a|--address {address}]",
		"show status of the conversion API server",
		`Use the status command for checking on a running conversion API server.`,
		s.Run)

	s.AddBaseSettings()

	return s
}

//
type Status struct {
	//
	Runner
}

//
func (s *Status) Run() error {

	s.ParseSettings()

	resp, err := s.apiCall("GET", "/status", false, nil)
	if err != nil {
		return fmt.Errorf("cannot reach API server: %v", err)
	}
	defer resp.Close()

	_, err = io.Copy(os.Stdout, resp)
	return err
}
