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
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/control"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve [-a|--address {address}] [-t|--template {file}] [-r|--repo {repo base folder}]`,
		"conversion API server command",
		`Use the serve command for running the conversion API server. Clients PUT SID
tunes to /convert and get SF2 files back, /unpack goes the other way, and
/validate compares two tunes. Logging can be configured with the LOG_FORMAT,
LOG_FORCE_COLORS, LOG_METHODS and LOG_LEVEL environment variables.`,
		s.Run)

	s.AddBaseSettings()
	s.AddTemplateSetting()
	s.AddSetting(&s.Repository, "repo", "r", "SF2CONV_REPO", "",
		`driver template repo base folder; when omitted, resolving
templates by reference is prohibited`, false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Repository string
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	template, err := s.loadTemplate()
	if err != nil {
		return err
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)

	api := control.NewAPIServer(s.Address, s.Repository, template)
	go func() {
		defer wg.Done()
		if err := api.Serve(); err != nil {
			log.Errorf("API server closed with error: %v", err)
		} else {
			log.Info("API server stopped")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	log.WithField("signal", sig).Info("signal received, shutting down")

	if err := api.Stop(); err != nil {
		log.Errorf("problem stopping API server: %v", err)
	}
	wg.Wait()

	log.Info("SF2Conv stopped")
	return nil
}
