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

// Command railoptimad runs the railway dispatch optimizer's HTTP and
// WebSocket server.
package main

import (
	"os"

	"github.com/railoptima/railoptima/config"
	"github.com/railoptima/railoptima/server"
	"github.com/mattn/go-colorable"
	log "gopkg.in/inconshreveable/log15.v2"
)

func main() {
	logger := log.New()
	logger.SetHandler(log.StreamHandler(colorable.NewColorableStdout(), log.TerminalFormat()))

	cfg := config.Load()
	logger.Info("starting railoptimad", "solver_type", cfg.SolverType, "addr", cfg.Addr, "port", cfg.Port)

	server.Run(cfg, logger)
	os.Exit(1)
}
