package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/railoptima/railoptima/config"
	"github.com/railoptima/railoptima/core"
	log "gopkg.in/inconshreveable/log15.v2"
)

func testEnv() *Env {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())
	cfg := config.Config{SolverType: "ortools", Solver: core.NewSolverConfig()}
	cfg.Solver.MaxSolveTimeSeconds = 3
	return &Env{
		Config:  cfg,
		Monitor: core.NewMonitor(logger),
		Audits:  newAuditState(100),
		Logger:  logger,
	}
}

func TestHealthEndpoint(t *testing.T) {
	Convey("GET /health reports solver readiness", t, func() {
		env := testEnv()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		serveHealth(env)(rec, req)

		So(rec.Code, ShouldEqual, http.StatusOK)
		var body map[string]interface{}
		err := json.Unmarshal(rec.Body.Bytes(), &body)
		So(err, ShouldBeNil)
		So(body["status"], ShouldEqual, "healthy")
	})
}

func TestScheduleEndpointRejectsBadJSON(t *testing.T) {
	Convey("POST /schedule with malformed JSON returns 400", t, func() {
		env := testEnv()
		req := httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()

		serveSchedule(env)(rec, req)

		So(rec.Code, ShouldEqual, http.StatusBadRequest)
	})
}

func TestScheduleEndpointHappyPath(t *testing.T) {
	Convey("POST /schedule with a valid request returns a schedule", t, func() {
		env := testEnv()
		body, _ := json.Marshal(core.Request{
			Trains: []core.Train{{TrainID: "A", Priority: 1, Destination: "Y", Route: []string{"X", "Y"}}},
			Tracks: []core.TrackSegment{{SegmentID: "K1", FromStation: "X", ToStation: "Y", Capacity: 1, HeadwayMinutes: 2}},
		})
		req := httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		serveSchedule(env)(rec, req)

		So(rec.Code, ShouldEqual, http.StatusOK)
		var resp scheduleResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		So(err, ShouldBeNil)
		So(resp.Success, ShouldBeTrue)
		So(len(resp.OptimizedSchedule), ShouldBeGreaterThan, 0)

		Convey("and an audit entry is recorded", func() {
			So(len(env.Audits.recent(10)), ShouldEqual, 1)
		})
	})
}

func TestMetricsEndpointBeforeAnyRun(t *testing.T) {
	Convey("GET /metrics with no prior runs returns an empty summary", t, func() {
		env := testEnv()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()

		serveMetrics(env)(rec, req)

		So(rec.Code, ShouldEqual, http.StatusOK)
		var summary core.Summary
		err := json.Unmarshal(rec.Body.Bytes(), &summary)
		So(err, ShouldBeNil)
		So(summary.TotalRuns, ShouldEqual, 0)
	})
}
