package core

import "math"

// weatherSpeedFactors mirrors advanced_constraints.py's weather_speed_factors
// table verbatim.
var weatherSpeedFactors = map[string]float64{
	"heavy_rain": 0.7,
	"fog":        0.5,
	"snow":       0.6,
	"high_wind":  0.8,
	"normal":     1.0,
}

// crewChangeMinStopTicks is the mandatory minimum dwell at a crew-change
// station, matching the source's hardcoded 10-minute stop.
const crewChangeMinStopTicks = 10

// Signal describes one signal controlling a set of segments.
type Signal struct {
	SignalID         string   `json:"signal_id"`
	ControlledTracks []string `json:"controlled_tracks"`
	Type             string   `json:"type"` // "automatic" or "manual"
}

// MaintenanceWindow blacks out a segment for a tick range, inclusive.
type MaintenanceWindow struct {
	TrackID     string `json:"track_id"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

// AdvancedOptions bundles every optional domain augmentation from
// SPEC_FULL.md §4.3. Each field is independently optional; an empty
// AdvancedOptions degrades to the base constraint set only.
type AdvancedOptions struct {
	// JunctionTracks maps a junction id to the segments that meet there;
	// at most one train may occupy any of them at a given tick.
	JunctionTracks     map[string][]string `json:"junction_tracks,omitempty"`
	Signals            []Signal            `json:"signals,omitempty"`
	MaintenanceWindows []MaintenanceWindow `json:"maintenance_windows,omitempty"`
	// SpeedRestrictions maps segment id to a restricted speed in km/h,
	// below the segment's max_speed_kmh.
	SpeedRestrictions  map[string]float64 `json:"speed_restrictions,omitempty"`
	CrewChangeStations []string           `json:"crew_change_stations,omitempty"`
	OvertakingStations []string           `json:"overtaking_stations,omitempty"`
	// WeatherConditions maps segment id to one of the keys in
	// weatherSpeedFactors.
	WeatherConditions map[string]string `json:"weather_conditions,omitempty"`
}

func (o *AdvancedOptions) isMaintenanceBlocked(segment string, tick int) bool {
	if o == nil {
		return false
	}
	for _, w := range o.MaintenanceWindows {
		if w.TrackID == segment && tick >= w.StartMinute && tick <= w.EndMinute {
			return true
		}
	}
	return false
}

// extraOccupancyTicks computes the additional ticks a train must remain on
// segment beyond a single tick, due to either a speed restriction or a
// weather condition (the two are mechanically identical per SPEC_FULL.md
// §4.3's a = ceil((d/v' - d/v_max)*60/Delta)). A segment with both
// configured takes the larger of the two. stepMinutes is the configured
// time step Delta; a value <= 0 is treated as the default of 1 minute.
func (o *AdvancedOptions) extraOccupancyTicks(track TrackSegment, stepMinutes int) int {
	if o == nil || track.MaxSpeedKMH <= 0 || track.DistanceKM <= 0 {
		return 0
	}
	if stepMinutes <= 0 {
		stepMinutes = 1
	}
	extra := 0
	normalTime := (track.DistanceKM / track.MaxSpeedKMH) * 60
	if v, ok := o.SpeedRestrictions[track.SegmentID]; ok && v > 0 && v < track.MaxSpeedKMH {
		restrictedTime := (track.DistanceKM / v) * 60
		if e := roundUp((restrictedTime - normalTime) / float64(stepMinutes)); e > extra {
			extra = e
		}
	}
	if cond, ok := o.WeatherConditions[track.SegmentID]; ok {
		factor := weatherSpeedFactors[cond]
		if factor <= 0 {
			factor = 1.0
		}
		if factor < 1.0 {
			weatherTime := normalTime / factor
			if e := roundUp((weatherTime - normalTime) / float64(stepMinutes)); e > extra {
				extra = e
			}
		}
	}
	return extra
}

func (o *AdvancedOptions) requiresCrewChange(station string) bool {
	if o == nil {
		return false
	}
	for _, s := range o.CrewChangeStations {
		if s == station {
			return true
		}
	}
	return false
}

func (o *AdvancedOptions) isOvertakingStation(station string) bool {
	if o == nil {
		return false
	}
	for _, s := range o.OvertakingStations {
		if s == station {
			return true
		}
	}
	return false
}

// junctionMembers returns, for a segment, every junction track group it
// belongs to, so the solver can enforce cross-junction exclusivity when
// placing an occupancy on that segment.
func (o *AdvancedOptions) junctionMembers(segment string) [][]string {
	if o == nil {
		return nil
	}
	var groups [][]string
	for _, tracks := range o.JunctionTracks {
		for _, t := range tracks {
			if t == segment {
				groups = append(groups, tracks)
				break
			}
		}
	}
	return groups
}

// signalRequiresClearance reports whether any manual signal controls
// segment. Manual signals gate occupancy on an explicit clearance boolean
// in the source; this repo's search never withholds clearance (there is
// no external signaller to consult), so a manual signal is always
// satisfied once reached, matching automatic behavior, and is recorded
// here purely so callers can see which segments carry the constraint.
func (o *AdvancedOptions) signalRequiresClearance(segment string) bool {
	if o == nil {
		return false
	}
	for _, s := range o.Signals {
		if s.Type != "manual" {
			continue
		}
		for _, t := range s.ControlledTracks {
			if t == segment {
				return true
			}
		}
	}
	return false
}

// roundUp implements the ceiling in SPEC_FULL.md §4.3's added-ticks
// formula a = ⌈(d/v′ − d/v_max)·60/Δ⌉, kept as a named helper so the
// rounding policy is visible in one place.
func roundUp(f float64) int {
	return int(math.Ceil(f))
}
