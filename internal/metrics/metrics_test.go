package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"izhinet/internal/logging"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.SetNetwork(100, 412)
	r.ObserveStep(time.Millisecond)
	r.ObserveStep(2 * time.Millisecond)
	r.AddSpikes("RS", 3)
	r.AddSpikes("FS", 1)
	r.AddSpikes("RS", 2)
	r.AddSpikes("IB", 0)

	if got := testutil.ToFloat64(r.steps); got != 2 {
		t.Fatalf("steps = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.spikes.WithLabelValues("RS")); got != 5 {
		t.Fatalf("RS spikes = %v, want 5", got)
	}
	if got := testutil.ToFloat64(r.neurons); got != 100 {
		t.Fatalf("neurons = %v, want 100", got)
	}
	if got := testutil.ToFloat64(r.links); got != 412 {
		t.Fatalf("links = %v, want 412", got)
	}
	if got := testutil.CollectAndCount(r.spikes); got != 2 {
		t.Fatalf("expected 2 spike series, got %d", got)
	}

	expected := `
# HELP izhinet_steps_total Simulated time steps.
# TYPE izhinet_steps_total counter
izhinet_steps_total 2
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "izhinet_steps_total"); err != nil {
		t.Fatalf("unexpected exposition: %v", err)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.SetNetwork(1, 1)
	r.ObserveStep(time.Second)
	r.AddSpikes("RS", 1)
	if r.Registry() != nil {
		t.Fatal("expected nil registry")
	}
	if _, err := Serve("127.0.0.1:0", r, logging.Discard()); err == nil {
		t.Fatal("expected error serving nil recorder")
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nil recorder handler status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServe(t *testing.T) {
	r := NewRecorder()
	r.ObserveStep(time.Microsecond)

	srv, err := Serve("127.0.0.1:0", r, logging.Discard())
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "izhinet_steps_total 1") {
		t.Fatalf("unexpected response %d: %s", resp.StatusCode, body)
	}
}
