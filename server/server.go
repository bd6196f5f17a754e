// Copyright (C) 2008-2018 by Nicolas Piganeau and the TS2 TEAM
// (See AUTHORS file)
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program; if not, write to the
// Free Software Foundation, Inc.,
// 59 Temple Place - Suite 330, Boston, MA  02111-1307, USA.

// Package server exposes the railway dispatch optimizer over HTTP and a
// WebSocket push channel, following the structure of the teacher's own
// server package (InitializeLogger, a hub-startup-with-timeout select,
// HttpdStart) adapted to the scheduling domain.
package server

import (
	"fmt"
	"html/template"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rakyll/statik/fs"
	"github.com/railoptima/railoptima/config"
	"github.com/railoptima/railoptima/core"
	_ "github.com/railoptima/railoptima/server/statik"
	log "gopkg.in/inconshreveable/log15.v2"
)

const maxHubStartupTime = 3 * time.Second

// Env bundles everything a handler needs: configuration, the shared
// Performance Monitor, the audit ring, and the process logger. Per
// DESIGN.md's resolution of SPEC_FULL.md §9 Open Question (b), this is
// the one process-wide value the HTTP surface keeps, behind the Monitor's
// own mutex.
type Env struct {
	Config  config.Config
	Monitor *core.Monitor
	Audits  *auditState
	Logger  log.Logger
}

func (e *Env) optimize(req core.Request) (core.Result, error) {
	result, err := core.Optimize(req, e.Config.Solver, e.Monitor, e.Logger)
	status := "OPTIMAL"
	severity := "INFO"
	if err != nil {
		severity = "ERROR"
		status = "FAILED"
	} else {
		status = result.Status.String()
	}
	e.Audits.append(AuditEntry{
		Event:    "OPTIMIZE_RUN",
		Severity: severity,
		Details: map[string]interface{}{
			"trains": len(req.Trains),
			"tracks": len(req.Tracks),
			"status": status,
		},
	})
	return result, err
}

var homeTempl *template.Template

// Run builds the Env, starts the WebSocket hub, and blocks serving HTTP.
func Run(cfg config.Config, logger log.Logger) {
	logger = logger.New("module", "server")
	env := &Env{
		Config:  cfg,
		Monitor: core.NewMonitor(logger),
		Audits:  newAuditState(1000),
		Logger:  logger,
	}

	hub := NewHub(env)

	hubUp := make(chan bool)
	timer := time.After(maxHubStartupTime)
	go hub.run(hubUp)
	select {
	case <-hubUp:
		httpdStart(env, hub)
	case <-timer:
		logger.Crit("hub did not start")
	}
}

func httpdStart(env *Env, hub *Hub) {
	logger := env.Logger
	statikFS, err := fs.New()
	if err != nil {
		logger.Crit("unable to read statik FS", "error", err)
		return
	}

	homeTemplFile, err := statikFS.Open("/index.html")
	if err != nil {
		logger.Crit("unable to read index.html from statikFS", "error", err)
		return
	}
	homeTemplData, err := ioutil.ReadAll(homeTemplFile)
	if err != nil {
		logger.Crit("unable to open index.html", "error", err)
		return
	}
	homeTempl = template.Must(template.New("").Parse(string(homeTemplData)))

	router := mux.NewRouter()
	router.HandleFunc("/", serveHome(env)).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(statikFS)))
	router.HandleFunc("/ws", hub.serveWs)
	installAPI(router, env)

	serverAddress := fmt.Sprintf("%s:%s", env.Config.Addr, env.Config.Port)
	logger.Info("starting http", "address", serverAddress)
	err = http.ListenAndServe(serverAddress, router)
	logger.Crit("http crashed", "error", err)
}

func serveHome(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env.Logger.Debug("new http connection", "remote", r.RemoteAddr)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := struct {
			Title       string
			Description string
			Host        string
		}{
			"RailOptima Dispatch Optimizer",
			"Railway scheduling optimization service",
			"ws://" + r.Host + "/ws",
		}
		homeTempl.Execute(w, data)
	}
}
