package core

import "testing"

func TestExtraOccupancyTicksSpeedRestriction(t *testing.T) {
	seg := TrackSegment{SegmentID: "K1", DistanceKM: 60, MaxSpeedKMH: 120}
	adv := &AdvancedOptions{SpeedRestrictions: map[string]float64{"K1": 60}}

	got := adv.extraOccupancyTicks(seg, 1)
	want := 30 // (60/60 - 60/120) * 60 / 1 = 30
	if got != want {
		t.Fatalf("extraOccupancyTicks() = %d, want %d", got, want)
	}
}

func TestExtraOccupancyTicksDividesByTimeStep(t *testing.T) {
	seg := TrackSegment{SegmentID: "K1", DistanceKM: 60, MaxSpeedKMH: 120}
	adv := &AdvancedOptions{SpeedRestrictions: map[string]float64{"K1": 60}}

	// Same 30 added minutes as above, but on a 5-minute grid that's 6
	// ticks, not 30.
	got := adv.extraOccupancyTicks(seg, 5)
	want := 6
	if got != want {
		t.Fatalf("extraOccupancyTicks() with Delta=5 = %d, want %d", got, want)
	}
}

func TestExtraOccupancyTicksWeather(t *testing.T) {
	cases := []struct {
		condition string
		want      int
	}{
		{"normal", 0},
		{"heavy_rain", 13},
		{"fog", 30},
		{"snow", 20},
		{"high_wind", 8},
	}
	seg := TrackSegment{SegmentID: "K1", DistanceKM: 60, MaxSpeedKMH: 120}
	for _, c := range cases {
		adv := &AdvancedOptions{WeatherConditions: map[string]string{"K1": c.condition}}
		got := adv.extraOccupancyTicks(seg, 1)
		if got != c.want {
			t.Errorf("condition %q: extraOccupancyTicks() = %d, want %d", c.condition, got, c.want)
		}
	}
}

func TestMaintenanceWindowBlocksTicks(t *testing.T) {
	adv := &AdvancedOptions{MaintenanceWindows: []MaintenanceWindow{{TrackID: "K1", StartMinute: 10, EndMinute: 20}}}

	if !adv.isMaintenanceBlocked("K1", 15) {
		t.Fatal("expected tick 15 to be blocked")
	}
	if adv.isMaintenanceBlocked("K1", 21) {
		t.Fatal("expected tick 21 to be clear")
	}
	if adv.isMaintenanceBlocked("K2", 15) {
		t.Fatal("expected an unrelated segment to be clear")
	}
}

func TestJunctionMembersGrouping(t *testing.T) {
	adv := &AdvancedOptions{JunctionTracks: map[string][]string{"J1": {"K1", "K2", "K3"}}}

	groups := adv.junctionMembers("K2")
	if len(groups) != 1 || len(groups[0]) != 3 {
		t.Fatalf("junctionMembers(K2) = %v, want one group of 3", groups)
	}
	if adv.junctionMembers("K9") != nil {
		t.Fatal("expected no groups for a segment outside any junction")
	}
}

func TestNilAdvancedOptionsAreInert(t *testing.T) {
	var adv *AdvancedOptions
	seg := TrackSegment{SegmentID: "K1", DistanceKM: 10, MaxSpeedKMH: 100}

	if adv.isMaintenanceBlocked("K1", 0) {
		t.Fatal("nil AdvancedOptions must never block")
	}
	if adv.extraOccupancyTicks(seg, 1) != 0 {
		t.Fatal("nil AdvancedOptions must add no extra ticks")
	}
	if adv.requiresCrewChange("X") || adv.isOvertakingStation("X") {
		t.Fatal("nil AdvancedOptions must never flag a station")
	}
}
