package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestBroadcastToNoClients(t *testing.T) {
	s := NewServer()
	// Broadcasting with no connected clients must not panic or block.
	s.Broadcast(Frame{Iter: 1, Cost: 10, Feasible: true})
	s.OnIteration(2, 5, false)
}
