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

// Package core implements the railway dispatch scheduling engine: the
// discrete-time constraint model, its domain-specific augmentations, the
// branch-and-bound solver, schedule extraction and run metrics.
package core

import (
	"fmt"
	"time"
)

// ConflictType enumerates the kinds of resource conflicts the caller may
// report ahead of a solve.
type ConflictType string

const (
	ConflictTrackOccupation  ConflictType = "track_occupation"
	ConflictPlatform         ConflictType = "platform_conflict"
	ConflictJunctionCrossing ConflictType = "junction_crossing"
	ConflictHeadwayViolation ConflictType = "headway_violation"
)

// Train is one scheduled service to be placed on the time grid.
type Train struct {
	TrainID          string     `json:"train_id"`
	CurrentPosition  string     `json:"current_position"`
	ScheduledArrival time.Time  `json:"scheduled_arrival"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	Priority         int        `json:"priority"` // 1 highest, 5 lowest
	DelayMinutes     int        `json:"delay_minutes"`
	Destination      string     `json:"destination"`
	Route            []string   `json:"route"`
}

// TrackSegment is one piece of track between two stations.
type TrackSegment struct {
	SegmentID      string  `json:"segment_id"`
	FromStation    string  `json:"from_station"`
	ToStation      string  `json:"to_station"`
	Capacity       int     `json:"capacity"`
	HeadwayMinutes int     `json:"headway_minutes"`
	DistanceKM     float64 `json:"distance_km,omitempty"`
	MaxSpeedKMH    float64 `json:"max_speed_kmh,omitempty"`
}

// Conflict is a previously detected contention over a shared resource.
type Conflict struct {
	ConflictID   string       `json:"conflict_id"`
	TrainIDs     []string     `json:"train_ids"`
	ResourceID   string       `json:"resource_id"`
	ConflictType ConflictType `json:"conflict_type"`
	Severity     int          `json:"severity"` // 1 critical, 5 minor
}

// SolverConfig tunes the time grid and objective weights. NewSolverConfig
// returns one holding the defaults; zero-valued fields of a config built
// any other way are not replaced by those defaults.
type SolverConfig struct {
	TimeHorizonMinutes   int
	TimeStepMinutes      int
	MaxSolveTimeSeconds  int
	DelayWeight          float64
	ConflictWeight       float64
	PriorityMultiplier   float64
	HeadwayBufferMinutes int
	Workers              int
}

// NewSolverConfig returns the default configuration, matching the
// original optimizer's OptimizationConfig defaults.
func NewSolverConfig() SolverConfig {
	return SolverConfig{
		TimeHorizonMinutes:   240,
		TimeStepMinutes:      1,
		MaxSolveTimeSeconds:  30,
		DelayWeight:          1.0,
		ConflictWeight:       100.0,
		PriorityMultiplier:   2.0,
		HeadwayBufferMinutes: 2,
		Workers:              4,
	}
}

// ScheduleEntry is one contiguous occupation of a segment by a train.
type ScheduleEntry struct {
	TrainID   string    `json:"train_id"`
	SegmentID string    `json:"segment_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Platform  *int      `json:"platform,omitempty"`
}

// ticks returns the number of discrete ticks on the configured time grid.
func (c SolverConfig) ticks() int {
	if c.TimeStepMinutes <= 0 {
		return c.TimeHorizonMinutes
	}
	return c.TimeHorizonMinutes / c.TimeStepMinutes
}

// maxStartDelayTicks returns the largest permissible start delay in ticks,
// matching the source's "max 2 hours" cap.
func (c SolverConfig) maxStartDelayTicks() int {
	maxMinutes := 120
	if half := c.TimeHorizonMinutes / 2; half < maxMinutes {
		maxMinutes = half
	}
	if c.TimeStepMinutes <= 0 {
		return maxMinutes
	}
	return maxMinutes / c.TimeStepMinutes
}

// Request is the decoded JSON payload for a single optimize call.
type Request struct {
	Trains             []Train          `json:"trains"`
	Tracks             []TrackSegment   `json:"tracks"`
	Conflicts          []Conflict       `json:"conflicts"`
	TimeHorizonMinutes int              `json:"time_horizon_minutes"`
	WarmStartSolution  []ScheduleEntry  `json:"warm_start_solution,omitempty"`
	Advanced           *AdvancedOptions `json:"advanced,omitempty"`
}

// Result is what a completed Optimize call returns.
type Result struct {
	Schedule          []ScheduleEntry
	ObjectiveValue    float64
	SolveTimeSeconds  float64
	ConflictsResolved int
	TotalDelayMinutes int
	Status            SolveStatus
}

// Validate checks the structural invariants described in SPEC_FULL.md §3:
// every train id a conflict references resolves, capacities and headways
// are sane, and every train's route maps onto a contiguous segment chain.
// A conflict's resource id is not checked against the known segments.
func (r Request) Validate() error {
	if len(r.Trains) == 0 {
		return &Error{Kind: KindValidation, Message: "at least one train is required"}
	}
	stations := map[string]bool{}
	segByID := map[string]TrackSegment{}
	for _, tr := range r.Tracks {
		if tr.SegmentID == "" {
			return &Error{Kind: KindValidation, Message: "track segment missing segment_id"}
		}
		if _, dup := segByID[tr.SegmentID]; dup {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("duplicate segment id %q", tr.SegmentID)}
		}
		if tr.Capacity < 1 {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("segment %q: capacity must be >= 1", tr.SegmentID)}
		}
		if tr.HeadwayMinutes < 0 {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("segment %q: headway_minutes must be >= 0", tr.SegmentID)}
		}
		segByID[tr.SegmentID] = tr
		stations[tr.FromStation] = true
		stations[tr.ToStation] = true
	}
	seen := map[string]bool{}
	for _, t := range r.Trains {
		if t.TrainID == "" {
			return &Error{Kind: KindValidation, Message: "train missing train_id"}
		}
		if seen[t.TrainID] {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("duplicate train id %q", t.TrainID)}
		}
		seen[t.TrainID] = true
		if t.Priority < 1 || t.Priority > 5 {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("train %q: priority must be in [1,5]", t.TrainID)}
		}
		if len(t.Route) == 0 {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("train %q: route must not be empty", t.TrainID)}
		}
		if _, err := routeSegments(t, r.Tracks); err != nil {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("train %q: %v", t.TrainID, err)}
		}
	}
	trainIDs := seen
	for _, c := range r.Conflicts {
		if c.ConflictID == "" {
			return &Error{Kind: KindValidation, Message: "conflict missing conflict_id"}
		}
		if c.Severity < 1 || c.Severity > 5 {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("conflict %q: severity must be in [1,5]", c.ConflictID)}
		}
		for _, tid := range c.TrainIDs {
			if !trainIDs[tid] {
				return &Error{Kind: KindValidation, Message: fmt.Sprintf("conflict %q references unknown train %q", c.ConflictID, tid)}
			}
		}
	}
	return nil
}

// routeSegments resolves a train's station route to the chain of track
// segments it traverses, matching segments by unordered endpoint equality
// and preferring the first match in input order, same as the source's
// _get_route_segments.
func routeSegments(t Train, tracks []TrackSegment) ([]TrackSegment, error) {
	var out []TrackSegment
	for i := 0; i+1 < len(t.Route); i++ {
		from, to := t.Route[i], t.Route[i+1]
		found := false
		for _, tr := range tracks {
			if (tr.FromStation == from && tr.ToStation == to) || (tr.FromStation == to && tr.ToStation == from) {
				out = append(out, tr)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no track segment connects %q and %q", from, to)
		}
	}
	if len(t.Route) == 1 {
		return nil, nil
	}
	return out, nil
}
