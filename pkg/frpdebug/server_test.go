package frpdebug

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ebb-frp/ebb/pkg/frp"
)

func newTestInspector(t *testing.T) (*frp.Graph, func(int), *httptest.Server) {
	t.Helper()
	g := frp.NewGraph()

	var emit func(int)
	frp.WithGraph(g, func() {
		var e *frp.Event[int]
		e, emit = frp.NewEvent[int]()
		frp.Stepper(e, 0)
	})

	srv := httptest.NewServer(NewServer(g).Routes())
	t.Cleanup(srv.Close)
	return g, emit, srv
}

func TestServerSnapshotJSON(t *testing.T) {
	_, emit, srv := newTestInspector(t)
	emit(7)

	resp, err := http.Get(srv.URL + "/graph.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}

	var snap frp.GraphSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Nodes) != 2 || len(snap.Edges) != 1 {
		t.Errorf("snapshot shape: %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}
	if snap.Emissions != 1 {
		t.Errorf("emissions: %d", snap.Emissions)
	}
}

func TestServerSnapshotDOT(t *testing.T) {
	_, _, srv := newTestInspector(t)

	resp, err := http.Get(srv.URL + "/graph.dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "digraph ebb {") {
		t.Errorf("not DOT output:\n%s", body)
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	_, emit, srv := newTestInspector(t)
	emit(1)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	text := string(body)
	if !strings.Contains(text, "ebb_live_nodes") || !strings.Contains(text, "ebb_emissions_total 1") {
		t.Errorf("metrics exposition missing graph metrics:\n%s", text)
	}
}

func TestServerLiveStream(t *testing.T) {
	_, emit, srv := newTestInspector(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// First frame is always the full snapshot.
	var first liveMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "snapshot" || first.Snapshot == nil || len(first.Snapshot.Nodes) != 2 {
		t.Fatalf("unexpected first frame: %+v", first)
	}

	emit(42)

	var second liveMessage
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatal(err)
	}
	if second.Type != "event" || second.Event == nil || second.Event.Type != "emission" {
		t.Fatalf("unexpected mutation frame: %+v", second)
	}
}
