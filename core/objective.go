package core

// objectiveValue computes the weighted sum from SPEC_FULL.md §4.4,
// mirroring optimizer.py's _set_objective term for term.
func objectiveValue(arena *Arena, as *Assignment, conflictRealized map[string]bool) float64 {
	cfg := arena.Config
	var total float64

	for _, t := range arena.Trains {
		priorityWeight := cfg.DelayWeight * float64(6-t.Priority) * cfg.PriorityMultiplier
		total += priorityWeight * float64(as.StartDelay[t.TrainID])
	}
	for _, t := range arena.Trains {
		total += cfg.DelayWeight * 0.1 * float64(as.JourneyTick[t.TrainID])
	}
	for _, c := range arena.Conflicts {
		penalty := cfg.ConflictWeight * float64(6-c.Severity)
		if conflictRealized[c.ConflictID] {
			total += penalty
		}
	}
	var totalDelay int
	for _, t := range arena.Trains {
		totalDelay += as.StartDelay[t.TrainID]
	}
	total += cfg.DelayWeight * 0.01 * float64(totalDelay)
	return total
}

// realizedConflicts evaluates C5's reification for every declared
// conflict against a finished assignment: a conflict is realized if, at
// some tick, the joint occupancy of its train set on its resource
// exceeds the resource's capacity.
// Only ConflictTrackOccupation is reified here, matching optimizer.py's
// _add_conflict_constraints: platform/junction/headway conflicts are
// declared in the schema but never reified against c[q] in the source
// either, so a declared conflict of those types always reports
// unrealized. Platform and headway are instead enforced directly as hard
// constraints (platformFor, headwayAllows) rather than reified.
func realizedConflicts(arena *Arena, as *Assignment) map[string]bool {
	out := make(map[string]bool, len(arena.Conflicts))
	for _, c := range arena.Conflicts {
		if c.ConflictType != ConflictTrackOccupation {
			out[c.ConflictID] = false
			continue
		}
		track, ok := arena.Track(c.ResourceID)
		if !ok {
			continue
		}
		byTick := as.Occupancy[c.ResourceID]
		realized := false
		for _, occ := range byTick {
			count := 0
			for _, tid := range occ {
				if containsString(c.TrainIDs, tid) {
					count++
				}
			}
			if count > track.Capacity {
				realized = true
				break
			}
		}
		out[c.ConflictID] = realized
	}
	return out
}

func containsString(in []string, s string) bool {
	for _, v := range in {
		if v == s {
			return true
		}
	}
	return false
}
