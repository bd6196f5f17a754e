package core

// This file implements the base constraint classes C1-C6 from
// SPEC_FULL.md §4.2 as feasibility checks consulted by the solver while
// it constructs an assignment, plus a full validator used by tests to
// confirm a finished schedule honors every class at once (the P1-P6
// properties in SPEC_FULL.md §8).

// headwayWindow is hB+3, the pairwise exclusion window in ticks. The
// "+3" is carried over unexamined from the source; SPEC_FULL.md §9(c)
// flags it as an untuned constant.
func headwayWindow(cfg SolverConfig) int {
	return cfg.HeadwayBufferMinutes + 3
}

// capacityAllows reports whether one more train can join segment at tick
// without exceeding its capacity (C1).
func capacityAllows(as *Assignment, segment string, tick int, capacity int) bool {
	return as.occupantCount(segment, tick) < capacity
}

// headwayAllows reports whether train can occupy segment at tick without
// violating the minimum separation from any other train already placed
// on the same segment (C3).
func headwayAllows(as *Assignment, segment string, tick, window int, train string) bool {
	byTick := as.Occupancy[segment]
	lo := tick - window
	if lo < 0 {
		lo = 0
	}
	hi := tick + window
	if hi >= len(byTick) {
		hi = len(byTick) - 1
	}
	for τ := lo; τ <= hi; τ++ {
		if τ == tick {
			continue
		}
		for _, other := range byTick[τ] {
			if other != train {
				return false
			}
		}
	}
	return true
}

// junctionAllows reports whether placing train on segment at tick keeps
// every junction group segment belongs to at or below single occupancy.
func junctionAllows(as *Assignment, adv *AdvancedOptions, segment string, tick int) bool {
	groups := adv.junctionMembers(segment)
	for _, group := range groups {
		count := 0
		for _, member := range group {
			count += as.occupantCount(member, tick)
		}
		if count >= 1 {
			return false
		}
	}
	return true
}

// signalAllows reports whether a manual signal controlling segment grants
// clearance. This implementation has no external signaller to consult, so
// a manual signal always grants clearance once reached and this check
// never blocks a placement. Validate does not inspect signals.
func signalAllows(adv *AdvancedOptions, segment string) bool {
	_ = adv.signalRequiresClearance(segment)
	return true
}

// platformFor returns the first platform number in [1,pool] not already
// assigned to a different train simultaneously present at station during
// ticks tick..tick+dwell inclusive, implementing C4 (platform uniqueness, unconditional
// on joint presence — SPEC_FULL.md §9 Open Question (a)). pool is widened
// at overtaking stations, which need a holding siding in addition to their
// normal platforms. preferred, when in [1,pool] and still free, is
// returned ahead of the lowest free number, so a warm-started re-solve can
// keep a train's previous platform (SPEC_FULL.md §4.5); pass 0 for no
// preference. When every number in [1,pool] is taken it returns pool,
// which is then shared with another present train.
func platformFor(as *Assignment, arena *Arena, station string, tick, dwell int, train string, pool, preferred int) int {
	used := map[int]bool{}
	for _, other := range arena.TrainsAt(station) {
		if other == train {
			continue
		}
		plat, ok := as.Platform[other][station]
		if !ok {
			continue
		}
		if trainPresentNear(as, arena, other, station, tick, dwell) {
			used[plat] = true
		}
	}
	if preferred >= 1 && preferred <= pool && !used[preferred] {
		return preferred
	}
	for p := 1; p <= pool; p++ {
		if !used[p] {
			return p
		}
	}
	return pool
}

// trainPresentNear approximates "train is at station during ticks
// tick..tick+dwell inclusive" by checking whether train occupies any
// segment incident to station in that window (dwell 0 checks tick alone).
func trainPresentNear(as *Assignment, arena *Arena, train, station string, tick, dwell int) bool {
	for _, seg := range arena.RouteSegments(train) {
		if seg.FromStation != station && seg.ToStation != station {
			continue
		}
		byTick := as.Occupancy[seg.SegmentID]
		lo, hi := tick, tick+dwell
		if hi >= len(byTick) {
			hi = len(byTick) - 1
		}
		for τ := lo; τ <= hi && τ >= 0; τ++ {
			if as.occupies(seg.SegmentID, τ, train) {
				return true
			}
		}
	}
	return false
}

// Validate walks a finished assignment and confirms properties P1-P6
// from SPEC_FULL.md §8 hold: capacity (P1), headway (P2), route
// continuity (P3), platform uniqueness (P4), start-delay bound (P5), and
// completion within the horizon (P6). It is used by tests and may also
// be used by callers that want to double-check a warm-started re-solve.
func Validate(arena *Arena, as *Assignment) error {
	headway := headwayWindow(arena.Config)
	for _, tr := range arena.Tracks {
		byTick := as.Occupancy[tr.SegmentID]
		for τ, occ := range byTick {
			if len(occ) > tr.Capacity {
				return &Error{Kind: KindSolverFault, Message: "capacity violated on " + tr.SegmentID}
			}
			for _, t1 := range occ {
				for dt := 1; dt <= headway && τ+dt < len(byTick); dt++ {
					for _, t2 := range byTick[τ+dt] {
						if t2 != t1 {
							return &Error{Kind: KindSolverFault, Message: "headway violated on " + tr.SegmentID}
						}
					}
				}
			}
		}
	}
	for station, trains := range arena.stations {
		platformAt := map[int][]string{}
		for _, t := range trains {
			plat, ok := as.Platform[t][station]
			if !ok {
				continue
			}
			platformAt[plat] = append(platformAt[plat], t)
		}
		for _, group := range platformAt {
			if len(group) > 1 {
				for i := 0; i < len(group); i++ {
					for j := i + 1; j < len(group); j++ {
						if trainsOverlapAt(as, arena, group[i], group[j], station) {
							return &Error{Kind: KindSolverFault, Message: "platform collision at " + station}
						}
					}
				}
			}
		}
	}
	for _, t := range arena.Trains {
		if err := validateTrainTiming(arena, as, t); err != nil {
			return err
		}
	}
	return nil
}

// validateTrainTiming confirms P3, P5, and P6 for a single train: every
// segment in its route chain is occupied as one contiguous run, each run
// begins the instant the previous one ends (no idle gap and no overlap),
// the recorded start delay falls within the configured bound, and the
// train clears its last segment within the time grid.
func validateTrainTiming(arena *Arena, as *Assignment, t Train) error {
	delay := as.StartDelay[t.TrainID]
	if delay < 0 || delay > arena.MaxStartDelay() {
		return &Error{Kind: KindSolverFault, Message: "start delay out of bounds for " + t.TrainID}
	}

	segs := arena.RouteSegments(t.TrainID)
	var prevEnd int
	havePrev := false
	for _, seg := range segs {
		first, last, ok := trainSegmentSpan(as, seg.SegmentID, t.TrainID)
		if !ok {
			return &Error{Kind: KindSolverFault, Message: "missing occupancy on " + seg.SegmentID + " for " + t.TrainID}
		}
		if last-first+1 != countOccupied(as, seg.SegmentID, t.TrainID, first, last) {
			return &Error{Kind: KindSolverFault, Message: "discontinuous run on " + seg.SegmentID + " for " + t.TrainID}
		}
		if havePrev && first != prevEnd+1 {
			return &Error{Kind: KindSolverFault, Message: "route continuity violated for " + t.TrainID}
		}
		prevEnd = last
		havePrev = true
	}

	if journey, ok := as.JourneyTick[t.TrainID]; ok && journey > arena.Ticks() {
		return &Error{Kind: KindSolverFault, Message: "journey exceeds horizon for " + t.TrainID}
	}
	return nil
}

// trainSegmentSpan returns the first and last tick at which train
// occupies segment, or ok=false if it never does.
func trainSegmentSpan(as *Assignment, segment, train string) (first, last int, ok bool) {
	byTick := as.Occupancy[segment]
	first, last = -1, -1
	for τ := 0; τ < len(byTick); τ++ {
		if as.occupies(segment, τ, train) {
			if first == -1 {
				first = τ
			}
			last = τ
		}
	}
	return first, last, first != -1
}

// countOccupied counts the ticks in [lo,hi] at which train occupies
// segment, used to confirm a span has no internal gaps.
func countOccupied(as *Assignment, segment, train string, lo, hi int) int {
	n := 0
	for τ := lo; τ <= hi; τ++ {
		if as.occupies(segment, τ, train) {
			n++
		}
	}
	return n
}

func trainsOverlapAt(as *Assignment, arena *Arena, a, b, station string) bool {
	for _, seg := range arena.RouteSegments(a) {
		if seg.FromStation != station && seg.ToStation != station {
			continue
		}
		byTick := as.Occupancy[seg.SegmentID]
		for τ := range byTick {
			if as.occupies(seg.SegmentID, τ, a) && trainPresentNear(as, arena, b, station, τ, 0) {
				return true
			}
		}
	}
	return false
}
