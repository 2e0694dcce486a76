package inspect

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateResponse is the JSON body of GET /state
type StateResponse struct {
	State            string    `json:"state"`
	Next             string    `json:"next,omitempty"`
	Label            string    `json:"label"`
	RemainingSeconds float64   `json:"remaining_seconds"`
	ChangeAllowed    bool      `json:"change_allowed"`
	CapturedAt       time.Time `json:"captured_at"`
}

// NewHandler creates the debug HTTP handler.
// GET /state serves the recorder's latest snapshot, GET /metrics serves
// gatherer. A nil gatherer leaves /metrics unrouted.
func NewHandler(rec *Recorder, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
		snap, at, ok := rec.Latest()
		if !ok {
			http.Error(w, "no snapshot captured yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(StateResponse{
			State:            snap.State,
			Next:             snap.Next,
			Label:            snap.Label(),
			RemainingSeconds: snap.Remaining.Seconds(),
			ChangeAllowed:    snap.ChangeAllowed,
			CapturedAt:       at,
		})
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
