// Package config binds process configuration from the environment using
// viper, the way the "tabular" pack repo wires its own settings layer.
package config

import (
	"strings"

	"github.com/railoptima/railoptima/core"
	"github.com/spf13/viper"
)

// Config is the full set of process-level settings: listen address,
// solver back-end label, and default solver weights.
type Config struct {
	Addr       string
	Port       string
	SolverType string
	Solver     core.SolverConfig
}

// Load binds environment variables (with a RAILOPTIMA_ prefix for the
// solver weights) and returns a Config seeded with core.NewSolverConfig's
// defaults for anything unset.
func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", "0.0.0.0")
	v.SetDefault("port", "22222")
	v.SetDefault("solver_type", "ortools")

	defaults := core.NewSolverConfig()
	v.SetDefault("railoptima_time_horizon_minutes", defaults.TimeHorizonMinutes)
	v.SetDefault("railoptima_time_step_minutes", defaults.TimeStepMinutes)
	v.SetDefault("railoptima_max_solve_time_seconds", defaults.MaxSolveTimeSeconds)
	v.SetDefault("railoptima_delay_weight", defaults.DelayWeight)
	v.SetDefault("railoptima_conflict_weight", defaults.ConflictWeight)
	v.SetDefault("railoptima_priority_multiplier", defaults.PriorityMultiplier)
	v.SetDefault("railoptima_headway_buffer_minutes", defaults.HeadwayBufferMinutes)
	v.SetDefault("railoptima_workers", defaults.Workers)

	_ = v.BindEnv("solver_type", "SOLVER_TYPE")

	solverType := v.GetString("solver_type")
	switch solverType {
	case "ortools", "gurobi":
	default:
		solverType = "ortools"
	}

	return Config{
		Addr:       v.GetString("addr"),
		Port:       v.GetString("port"),
		SolverType: solverType,
		Solver: core.SolverConfig{
			TimeHorizonMinutes:   v.GetInt("railoptima_time_horizon_minutes"),
			TimeStepMinutes:      v.GetInt("railoptima_time_step_minutes"),
			MaxSolveTimeSeconds:  v.GetInt("railoptima_max_solve_time_seconds"),
			DelayWeight:          v.GetFloat64("railoptima_delay_weight"),
			ConflictWeight:       v.GetFloat64("railoptima_conflict_weight"),
			PriorityMultiplier:   v.GetFloat64("railoptima_priority_multiplier"),
			HeadwayBufferMinutes: v.GetInt("railoptima_headway_buffer_minutes"),
			Workers:              v.GetInt("railoptima_workers"),
		},
	}
}
