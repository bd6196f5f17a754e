package core

// Arena materializes the decision-variable coordinate space described in
// SPEC_FULL.md §4.1 over the discrete time grid. Unlike the OR-Tools
// source, there is no symbolic CP model behind these coordinates: the
// solver in solver.go searches directly over concrete values, and Arena's
// job is to fix the sparse (train, segment) pairs worth tracking and give
// every caller (constraint checks, the objective, the extractor) a single
// shared view of them, keyed by segment and train id.
type Arena struct {
	Trains   []Train
	Tracks   []TrackSegment
	Conflicts []Conflict
	Config   SolverConfig

	trainIndex map[string]int
	trackByID  map[string]TrackSegment
	routes     map[string][]TrackSegment // train id -> ordered segment chain
	segTrains  map[string][]string       // segment id -> train ids that may occupy it
	stations   map[string][]string       // station code -> train ids visiting it
	ticks      int
}

// NewArena derives the static structure (route chains, per-segment
// candidate trains) that every constraint builder and the solver consult
// repeatedly during a search.
func NewArena(trains []Train, tracks []TrackSegment, conflicts []Conflict, cfg SolverConfig) (*Arena, error) {
	a := &Arena{
		Trains:    trains,
		Tracks:    tracks,
		Conflicts: conflicts,
		Config:    cfg,
		trainIndex: make(map[string]int, len(trains)),
		trackByID:  make(map[string]TrackSegment, len(tracks)),
		routes:     make(map[string][]TrackSegment, len(trains)),
		segTrains:  make(map[string][]string),
		stations:   make(map[string][]string),
		ticks:      cfg.ticks(),
	}
	for i, t := range trains {
		a.trainIndex[t.TrainID] = i
		segs, err := routeSegments(t, tracks)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: err.Error()}
		}
		a.routes[t.TrainID] = segs
		for _, s := range segs {
			a.segTrains[s.SegmentID] = append(a.segTrains[s.SegmentID], t.TrainID)
		}
		for _, st := range uniqueStrings(t.Route) {
			a.stations[st] = append(a.stations[st], t.TrainID)
		}
	}
	for _, tr := range tracks {
		a.trackByID[tr.SegmentID] = tr
	}
	return a, nil
}

func uniqueStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// RouteSegments returns the derived segment chain for a train id.
func (a *Arena) RouteSegments(trainID string) []TrackSegment {
	return a.routes[trainID]
}

// Ticks returns the number of discrete ticks on the time grid.
func (a *Arena) Ticks() int { return a.ticks }

// Track looks up a segment by id.
func (a *Arena) Track(id string) (TrackSegment, bool) {
	tr, ok := a.trackByID[id]
	return tr, ok
}

// MaxStartDelay returns the largest permitted start delay, in ticks, for
// any train under this arena's configuration.
func (a *Arena) MaxStartDelay() int { return a.Config.maxStartDelayTicks() }

// TrainsOn returns the ids of trains whose route includes the given
// segment, in input order.
func (a *Arena) TrainsOn(segmentID string) []string { return a.segTrains[segmentID] }

// TrainsAt returns the ids of trains whose route visits the given
// station, in input order.
func (a *Arena) TrainsAt(station string) []string { return a.stations[station] }

// Assignment is the mutable state the solver searches over: a concrete
// value for every variable family in SPEC_FULL.md §4.1.
type Assignment struct {
	// Occupancy[segmentID][tick] lists train ids occupying that segment
	// at that tick. This realizes x[t,k,τ] as a membership test.
	Occupancy map[string][][]string
	// StartDelay[trainID] is s[t], in ticks.
	StartDelay map[string]int
	// Platform[trainID][station] is p[t,ℓ].
	Platform map[string]map[string]int
	// JourneyTick[trainID] is j[t]: the tick the train clears its last
	// segment.
	JourneyTick map[string]int
}

// NewAssignment allocates an empty assignment sized to the arena's time
// grid.
func NewAssignment(a *Arena) *Assignment {
	occ := make(map[string][][]string, len(a.Tracks))
	for _, tr := range a.Tracks {
		occ[tr.SegmentID] = make([][]string, a.ticks)
	}
	return &Assignment{
		Occupancy:   occ,
		StartDelay:  make(map[string]int, len(a.Trains)),
		Platform:    make(map[string]map[string]int, len(a.Trains)),
		JourneyTick: make(map[string]int, len(a.Trains)),
	}
}

// occupantCount returns how many trains occupy segment k at tick τ.
func (as *Assignment) occupantCount(segment string, tick int) int {
	return len(as.Occupancy[segment][tick])
}

// occupies reports whether train t occupies segment k at tick τ.
func (as *Assignment) occupies(segment string, tick int, train string) bool {
	for _, id := range as.Occupancy[segment][tick] {
		if id == train {
			return true
		}
	}
	return false
}

// place marks train as occupying segment at tick.
func (as *Assignment) place(segment string, tick int, train string) {
	as.Occupancy[segment][tick] = append(as.Occupancy[segment][tick], train)
}

// clone makes a deep-enough copy for backtracking: occupancy slices are
// copied per segment/tick so mutating the clone never mutates the parent.
func (as *Assignment) clone() *Assignment {
	occ := make(map[string][][]string, len(as.Occupancy))
	for seg, byTick := range as.Occupancy {
		cp := make([][]string, len(byTick))
		for i, trains := range byTick {
			if len(trains) > 0 {
				cp[i] = append([]string(nil), trains...)
			}
		}
		occ[seg] = cp
	}
	sd := make(map[string]int, len(as.StartDelay))
	for k, v := range as.StartDelay {
		sd[k] = v
	}
	pl := make(map[string]map[string]int, len(as.Platform))
	for k, v := range as.Platform {
		inner := make(map[string]int, len(v))
		for k2, v2 := range v {
			inner[k2] = v2
		}
		pl[k] = inner
	}
	jt := make(map[string]int, len(as.JourneyTick))
	for k, v := range as.JourneyTick {
		jt[k] = v
	}
	return &Assignment{Occupancy: occ, StartDelay: sd, Platform: pl, JourneyTick: jt}
}
