package core

import (
	"sort"
	"time"
)

// extractSchedule walks each segment's occupancy ascending by tick and
// emits one ScheduleEntry per maximal contiguous run, per train, matching
// optimizer.py's _extract_schedule. base is the instant tick 0
// corresponds to.
func extractSchedule(arena *Arena, as *Assignment, base time.Time) []ScheduleEntry {
	var out []ScheduleEntry
	stepMinutes := arena.Config.TimeStepMinutes
	if stepMinutes <= 0 {
		stepMinutes = 1
	}
	for _, t := range arena.Trains {
		platform := routePlatform(t, as.Platform[t.TrainID])
		for _, seg := range arena.RouteSegments(t.TrainID) {
			byTick := as.Occupancy[seg.SegmentID]
			var startTick = -1
			for τ := 0; τ < len(byTick); τ++ {
				occupied := as.occupies(seg.SegmentID, τ, t.TrainID)
				if occupied && startTick == -1 {
					startTick = τ
				}
				endOfRun := !occupied || τ == len(byTick)-1
				if startTick != -1 && endOfRun {
					endTick := τ
					if occupied {
						endTick = τ + 1
					}
					entry := ScheduleEntry{
						TrainID:   t.TrainID,
						SegmentID: seg.SegmentID,
						StartTime: base.Add(time.Duration(startTick*stepMinutes) * time.Minute),
						EndTime:   base.Add(time.Duration(endTick*stepMinutes) * time.Minute),
					}
					if platform != nil {
						p := *platform
						entry.Platform = &p
					}
					out = append(out, entry)
					startTick = -1
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].TrainID < out[j].TrainID
	})
	return out
}

// routePlatform returns the single platform value SPEC_FULL.md §4.6
// assigns to every one of a train's schedule entries: p[t,l] for the
// first station l on t's route for which p was materialized, scanning
// Train.Route from index 0, matching optimizer.py's _extract_schedule.
// It returns nil if no station on the route has a materialized platform.
func routePlatform(t Train, platforms map[string]int) *int {
	for _, station := range t.Route {
		if p, ok := platforms[station]; ok {
			v := p
			return &v
		}
	}
	return nil
}
