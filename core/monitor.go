package core

import (
	"encoding/json"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	log "gopkg.in/inconshreveable/log15.v2"
)

// monitorRingCapacity bounds the Performance Monitor's history, matching
// performance_monitor.py's "keep only last 100 runs".
const monitorRingCapacity = 100

// Metrics is one run's record, grounded on
// performance_monitor.py's OptimizationMetrics dataclass.
type Metrics struct {
	RunID              string    `json:"run_id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	SolveTimeSeconds   float64   `json:"solve_time_seconds"`
	ObjectiveValue     float64   `json:"objective_value"`
	NumTrains          int       `json:"num_trains"`
	NumTracks          int       `json:"num_tracks"`
	NumConflicts       int       `json:"num_conflicts"`
	ConflictsResolved  int       `json:"conflicts_resolved"`
	TotalDelayMinutes  int       `json:"total_delay_minutes"`
	SolverStatus       string    `json:"solver_status"`
	VariablesCount     int       `json:"variables_count"`
	ConstraintsCount   int       `json:"constraints_count"`
	// MemoryMB and CPUPercent are the optional process snapshots
	// performance_monitor.py takes via psutil; runtime.ReadMemStats is
	// this repo's substitute for the memory figure. There is no portable
	// stdlib equivalent of psutil's per-process CPU percent, so
	// CPUPercent is a coarse approximation (see sampleResourceUsage)
	// rather than an exact process-CPU reading.
	MemoryMB   float64 `json:"memory_mb,omitempty"`
	CPUPercent float64 `json:"cpu_percent,omitempty"`
}

// Summary is the aggregate view over the most recent runs, matching
// get_performance_summary's shape.
type Summary struct {
	TotalRuns                 int      `json:"total_runs"`
	RecentRuns                int      `json:"recent_runs"`
	AverageSolveTimeSeconds   float64  `json:"average_solve_time_seconds"`
	AverageObjectiveValue     float64  `json:"average_objective_value"`
	AverageConflictsResolved  float64  `json:"average_conflicts_resolved"`
	SuccessRatePercent        float64  `json:"success_rate_percent"`
	LastRun                   *Metrics `json:"last_run,omitempty"`
}

// Monitor is the Performance Monitor from SPEC_FULL.md §4.7: a bounded
// ring of recent runs plus summary/detailed/export views. Per DESIGN.md's
// resolution of SPEC_FULL.md §9 Open Question (b), callers own a Monitor
// instance explicitly rather than reaching for a package-level global.
type Monitor struct {
	mu      sync.Mutex
	history []Metrics
	current *Metrics
	logger  log.Logger
}

// NewMonitor creates a Monitor logging under the given parent logger,
// the same child-logger convention the teacher's server package uses
// for every subsystem.
func NewMonitor(parent log.Logger) *Monitor {
	return &Monitor{logger: parent.New("module", "monitor")}
}

// StartRun begins monitoring one optimize call.
func (m *Monitor) StartRun(numTrains, numTracks, numConflicts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &Metrics{
		RunID:        uuid.NewString(),
		StartTime:    time.Now(),
		NumTrains:    numTrains,
		NumTracks:    numTracks,
		NumConflicts: numConflicts,
	}
	m.logger.Info("optimization started", "run", m.current.RunID, "trains", numTrains, "tracks", numTracks, "conflicts", numConflicts)
}

// SetModelComplexity records the size of the materialized search space
// for the in-progress run.
func (m *Monitor) SetModelComplexity(variables, constraints int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.VariablesCount = variables
	m.current.ConstraintsCount = constraints
}

// EndRun finalizes the in-progress run and appends it to the ring,
// trimming the oldest entry once capacity is exceeded.
func (m *Monitor) EndRun(objective float64, conflictsResolved, totalDelay int, status SolveStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.EndTime = time.Now()
	m.current.SolveTimeSeconds = m.current.EndTime.Sub(m.current.StartTime).Seconds()
	m.current.ObjectiveValue = objective
	m.current.ConflictsResolved = conflictsResolved
	m.current.TotalDelayMinutes = totalDelay
	m.current.SolverStatus = status.String()
	m.current.MemoryMB, m.current.CPUPercent = sampleResourceUsage()

	m.history = append(m.history, *m.current)
	if len(m.history) > monitorRingCapacity {
		m.history = m.history[len(m.history)-monitorRingCapacity:]
	}
	m.logger.Info("optimization finished", "run", m.current.RunID, "solve_seconds", m.current.SolveTimeSeconds, "status", status.String())
	m.current = nil
}

// sampleResourceUsage reports the process's current heap usage in MB and
// an approximate CPU utilization percentage. Memory comes straight from
// runtime.ReadMemStats. CPU has no portable per-process equivalent in
// the standard library the way psutil.Process().cpu_percent() does for
// the source, so it is approximated from live goroutine pressure rather
// than measured directly; callers wanting an exact figure need a
// platform-specific API.
func sampleResourceUsage() (memoryMB, cpuPercent float64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	memoryMB = float64(ms.Alloc) / (1024 * 1024)

	cpuPercent = float64(runtime.NumGoroutine()) / float64(runtime.GOMAXPROCS(0)) * 10
	if cpuPercent > 100 {
		cpuPercent = 100
	}
	return memoryMB, cpuPercent
}

// Summary returns averages over the last ten runs plus the success
// fraction, matching get_performance_summary.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return Summary{}
	}
	n := 10
	if n > len(m.history) {
		n = len(m.history)
	}
	recent := m.history[len(m.history)-n:]

	var solveTime, objective float64
	var resolved float64
	var successes int
	for _, r := range recent {
		solveTime += r.SolveTimeSeconds
		objective += r.ObjectiveValue
		resolved += float64(r.ConflictsResolved)
		if r.SolverStatus == StatusOptimal.String() || r.SolverStatus == StatusFeasible.String() {
			successes++
		}
	}
	last := recent[len(recent)-1]
	return Summary{
		TotalRuns:                len(m.history),
		RecentRuns:               n,
		AverageSolveTimeSeconds:  solveTime / float64(n),
		AverageObjectiveValue:    objective / float64(n),
		AverageConflictsResolved: resolved / float64(n),
		SuccessRatePercent:       float64(successes) / float64(n) * 100,
		LastRun:                  &last,
	}
}

// Detailed returns every retained run, oldest first.
func (m *Monitor) Detailed() []Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Metrics, len(m.history))
	copy(out, m.history)
	return out
}

// exportDocument is the JSON shape written by Export.
type exportDocument struct {
	ExportTimestamp time.Time `json:"export_timestamp"`
	TotalRuns       int       `json:"total_runs"`
	Summary         Summary   `json:"summary"`
	Detailed        []Metrics `json:"detailed_metrics"`
}

// Export writes the current history to path as JSON, matching
// export_metrics.
func (m *Monitor) Export(path string) error {
	doc := exportDocument{
		ExportTimestamp: time.Now(),
		TotalRuns:       len(m.Detailed()),
		Summary:         m.Summary(),
		Detailed:        m.Detailed(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	m.logger.Info("metrics exported", "path", path)
	return nil
}
