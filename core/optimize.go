package core

import (
	"time"

	log "gopkg.in/inconshreveable/log15.v2"
)

// Optimize runs one end-to-end solve: validate the request, materialize
// the arena, search for an assignment under the configured wall budget,
// and extract a schedule and metrics. It is the sole entry point the
// server package calls into.
func Optimize(req Request, cfg SolverConfig, monitor *Monitor, logger log.Logger) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	if req.TimeHorizonMinutes > 0 {
		cfg.TimeHorizonMinutes = req.TimeHorizonMinutes
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	arena, err := NewArena(req.Trains, req.Tracks, req.Conflicts, cfg)
	if err != nil {
		return Result{}, err
	}

	if monitor != nil {
		monitor.StartRun(len(req.Trains), len(req.Tracks), len(req.Conflicts))
		monitor.SetModelComplexity(variableCount(arena), constraintCount(arena))
	}

	start := time.Now()
	d := &driver{
		arena:    arena,
		adv:      req.Advanced,
		deadline: start.Add(time.Duration(cfg.MaxSolveTimeSeconds) * time.Second),
		workers:  cfg.Workers,
	}
	status, as := d.solve(req.WarmStartSolution)
	solveSeconds := time.Since(start).Seconds()

	if as == nil {
		if monitor != nil {
			monitor.EndRun(0, 0, 0, status)
		}
		logger.Error("optimization failed", "status", status.String())
		return Result{Status: status}, &Error{Kind: KindInfeasible, Message: "no feasible solution found"}
	}

	conflictRealized := realizedConflicts(arena, as)
	objective := objectiveValue(arena, as, conflictRealized)
	totalDelay := 0
	for _, t := range arena.Trains {
		totalDelay += as.StartDelay[t.TrainID]
	}
	conflictsResolved := 0
	for _, c := range arena.Conflicts {
		if !conflictRealized[c.ConflictID] {
			conflictsResolved++
		}
	}

	schedule := extractSchedule(arena, as, start.Truncate(time.Minute))

	if monitor != nil {
		monitor.EndRun(objective, conflictsResolved, totalDelay, status)
	}
	logger.Info("optimization completed", "objective", objective, "status", status.String(), "solve_seconds", solveSeconds)

	return Result{
		Schedule:          schedule,
		ObjectiveValue:    objective,
		SolveTimeSeconds:  solveSeconds,
		ConflictsResolved: conflictsResolved,
		TotalDelayMinutes: totalDelay,
		Status:            status,
	}, nil
}

func variableCount(arena *Arena) int {
	count := len(arena.Trains)*2 + len(arena.Conflicts) // s[t], j[t], c[q]
	for _, t := range arena.Trains {
		count += len(arena.RouteSegments(t.TrainID)) * arena.Ticks()
	}
	return count
}

func constraintCount(arena *Arena) int {
	return len(arena.Tracks)*arena.Ticks() + len(arena.Trains)*2 + len(arena.Conflicts)
}
