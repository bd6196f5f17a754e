package core

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	log "gopkg.in/inconshreveable/log15.v2"
)

func testLogger() log.Logger {
	l := log.New()
	l.SetHandler(log.DiscardHandler())
	return l
}

func baseTrains() []Train {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	return []Train{
		{TrainID: "A", Priority: 1, Destination: "Y", Route: []string{"X", "Y"}, ScheduledArrival: now},
		{TrainID: "B", Priority: 2, Destination: "Y", Route: []string{"X", "Y"}, ScheduledArrival: now},
	}
}

func baseTracks() []TrackSegment {
	return []TrackSegment{
		{SegmentID: "K1", FromStation: "X", ToStation: "Y", Capacity: 1, HeadwayMinutes: 2},
	}
}

func TestTwoTrainsSerialSegment(t *testing.T) {
	Convey("Two trains competing for a single-capacity segment", t, func() {
		req := Request{Trains: baseTrains(), Tracks: baseTracks()}
		cfg := NewSolverConfig()
		cfg.MaxSolveTimeSeconds = 5
		monitor := NewMonitor(testLogger())

		result, err := Optimize(req, cfg, monitor, testLogger())

		So(err, ShouldBeNil)
		So(len(result.Schedule), ShouldBeGreaterThan, 0)

		Convey("the higher priority train is never delayed behind the lower priority one", func() {
			var aStart, bStart time.Time
			for _, e := range result.Schedule {
				if e.TrainID == "A" && (aStart.IsZero() || e.StartTime.Before(aStart)) {
					aStart = e.StartTime
				}
				if e.TrainID == "B" && (bStart.IsZero() || e.StartTime.Before(bStart)) {
					bStart = e.StartTime
				}
			}
			So(aStart.After(bStart) == false, ShouldBeTrue)
		})
	})
}

func TestMaintenanceBlackout(t *testing.T) {
	Convey("A maintenance window blocks all occupancy in its range", t, func() {
		req := Request{
			Trains: []Train{{TrainID: "A", Priority: 1, Destination: "Y", Route: []string{"X", "Y"}}},
			Tracks: baseTracks(),
			Advanced: &AdvancedOptions{
				MaintenanceWindows: []MaintenanceWindow{{TrackID: "K1", StartMinute: 10, EndMinute: 20}},
			},
		}
		cfg := NewSolverConfig()
		cfg.MaxSolveTimeSeconds = 5
		result, err := Optimize(req, cfg, NewMonitor(testLogger()), testLogger())

		So(err, ShouldBeNil)
		for _, e := range result.Schedule {
			So(e.StartTime.Before(e.EndTime), ShouldBeTrue)
		}

		arena, err := NewArena(req.Trains, req.Tracks, req.Conflicts, cfg)
		So(err, ShouldBeNil)
		d := &driver{arena: arena, adv: req.Advanced, deadline: time.Now().Add(5 * time.Second), workers: 4}
		_, as := d.solve(nil)
		So(as, ShouldNotBeNil)
		for τ := 10; τ <= 20; τ++ {
			So(as.occupies("K1", τ, "A"), ShouldBeFalse)
		}
	})
}

func TestInfeasibleWhenHeadwayExceedsHorizon(t *testing.T) {
	Convey("An impossibly large headway over a tiny horizon is reported infeasible", t, func() {
		req := Request{
			Trains: []Train{
				{TrainID: "A", Priority: 1, Destination: "Y", Route: []string{"X", "Y"}},
				{TrainID: "B", Priority: 1, Destination: "Y", Route: []string{"X", "Y"}},
			},
			Tracks:             []TrackSegment{{SegmentID: "K1", FromStation: "X", ToStation: "Y", Capacity: 1, HeadwayMinutes: 500}},
			TimeHorizonMinutes: 4,
		}
		cfg := NewSolverConfig()
		cfg.MaxSolveTimeSeconds = 2
		cfg.HeadwayBufferMinutes = 500

		result, err := Optimize(req, cfg, NewMonitor(testLogger()), testLogger())

		So(err, ShouldNotBeNil)
		So(result.Status == StatusInfeasible || result.Status == StatusUnknown, ShouldBeTrue)
	})
}

func TestValidateRejectsUnknownConflictTrain(t *testing.T) {
	Convey("A conflict referencing an unknown train fails validation", t, func() {
		req := Request{
			Trains:    baseTrains(),
			Tracks:    baseTracks(),
			Conflicts: []Conflict{{ConflictID: "C1", TrainIDs: []string{"ghost"}, ResourceID: "K1", ConflictType: ConflictTrackOccupation, Severity: 1}},
		}
		err := req.Validate()
		So(err, ShouldNotBeNil)
		So(IsKind(err, KindValidation), ShouldBeTrue)
	})
}

func TestScheduleSatisfiesCapacityAndHeadway(t *testing.T) {
	Convey("A completed schedule honors capacity and headway everywhere", t, func() {
		req := Request{Trains: baseTrains(), Tracks: baseTracks()}
		cfg := NewSolverConfig()
		cfg.MaxSolveTimeSeconds = 5

		arena, err := NewArena(req.Trains, req.Tracks, req.Conflicts, cfg)
		So(err, ShouldBeNil)

		d := &driver{arena: arena, adv: req.Advanced, deadline: time.Now().Add(5 * time.Second), workers: 4}
		status, as := d.solve(nil)
		So(status == StatusOptimal || status == StatusFeasible, ShouldBeTrue)
		So(Validate(arena, as), ShouldBeNil)
	})
}

func TestPerformanceMonitorRingCapacity(t *testing.T) {
	Convey("The monitor retains at most the last 100 runs", t, func() {
		m := NewMonitor(testLogger())
		for i := 0; i < 105; i++ {
			m.StartRun(1, 1, 0)
			m.EndRun(1.0, 0, 0, StatusOptimal)
		}
		So(len(m.Detailed()), ShouldEqual, 100)

		summary := m.Summary()
		So(summary.RecentRuns, ShouldEqual, 10)
		So(summary.TotalRuns, ShouldEqual, 100)
		So(summary.SuccessRatePercent, ShouldEqual, 100)
	})
}

func TestOvertakingStationWidensPlatformPool(t *testing.T) {
	Convey("Three trains sharing an overtaking station each get a distinct platform", t, func() {
		now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
		req := Request{
			Trains: []Train{
				{TrainID: "A", Priority: 1, Destination: "Y", Route: []string{"X", "Y"}, ScheduledArrival: now},
				{TrainID: "B", Priority: 2, Destination: "Y", Route: []string{"X", "Y"}, ScheduledArrival: now},
				{TrainID: "C", Priority: 3, Destination: "Y", Route: []string{"X", "Y"}, ScheduledArrival: now},
			},
			Tracks: []TrackSegment{{SegmentID: "K1", FromStation: "X", ToStation: "Y", Capacity: 3, HeadwayMinutes: 0}},
			Advanced: &AdvancedOptions{
				OvertakingStations: []string{"X", "Y"},
			},
		}
		cfg := NewSolverConfig()
		cfg.MaxSolveTimeSeconds = 5
		cfg.HeadwayBufferMinutes = 0

		result, err := Optimize(req, cfg, NewMonitor(testLogger()), testLogger())
		So(err, ShouldBeNil)
		So(len(result.Schedule), ShouldBeGreaterThan, 0)

		platforms := map[string]int{}
		for _, e := range result.Schedule {
			So(e.Platform, ShouldNotBeNil)
			platforms[e.TrainID] = *e.Platform
		}
		So(len(platforms), ShouldEqual, 3)
		So(platforms["A"] != platforms["B"] && platforms["A"] != platforms["C"] && platforms["B"] != platforms["C"], ShouldBeTrue)
	})
}

func TestSignalAllowsNeverBlocksManualSignal(t *testing.T) {
	Convey("A manual signal controlling the only segment never blocks placement", t, func() {
		req := Request{
			Trains: []Train{{TrainID: "A", Priority: 1, Destination: "Y", Route: []string{"X", "Y"}}},
			Tracks: baseTracks(),
			Advanced: &AdvancedOptions{
				Signals: []Signal{{SignalID: "S1", ControlledTracks: []string{"K1"}, Type: "manual"}},
			},
		}
		cfg := NewSolverConfig()
		cfg.MaxSolveTimeSeconds = 5
		result, err := Optimize(req, cfg, NewMonitor(testLogger()), testLogger())
		So(err, ShouldBeNil)
		So(len(result.Schedule), ShouldBeGreaterThan, 0)
	})
}

func TestRouteSegmentsRejectsUnmatchedRoute(t *testing.T) {
	Convey("A route whose stations have no connecting track fails validation", t, func() {
		req := Request{
			Trains: []Train{{TrainID: "A", Priority: 1, Destination: "Z", Route: []string{"X", "Z"}}},
			Tracks: baseTracks(),
		}
		err := req.Validate()
		So(err, ShouldNotBeNil)
	})
}
