package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atikulmunna/edlog/internal/aggregator"
	"github.com/atikulmunna/edlog/internal/hub"
	"github.com/atikulmunna/edlog/internal/metrics"
	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/parser"
	"github.com/atikulmunna/edlog/internal/systems"
)

func parse(t *testing.T, line string) model.Event {
	t.Helper()
	ev, err := parser.Parse(line)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return ev
}

type fixture struct {
	srv    *httptest.Server
	hub    *hub.Hub
	live   *systems.Live
	status atomic.Pointer[model.Status]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{hub: hub.New(), live: systems.NewLive(nil, systems.Folder{})}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.hub.Start(ctx)

	agg := aggregator.New(f.hub.Subscribe(), aggregator.Sources{Dropped: f.hub.Dropped})
	go agg.Start(ctx)

	s := New(Deps{
		Hub:        f.hub,
		Aggregator: agg,
		Systems:    f.live,
		Status:     f.status.Load,
		Metrics:    metrics.New().Handler(),
	}, "0")
	f.srv = httptest.NewServer(s.Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if into != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	var body map[string]any
	if code := getJSON(t, f.srv.URL+"/healthz", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestSystemsEndpoints(t *testing.T) {
	f := newFixture(t)

	var empty []systems.SystemRecord
	if code := getJSON(t, f.srv.URL+"/api/systems", &empty); code != http.StatusOK || len(empty) != 0 {
		t.Fatalf("expected empty list, got %d %v", code, empty)
	}
	if code := getJSON(t, f.srv.URL+"/api/systems/current", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 before any jump, got %d", code)
	}

	f.live.OnEvent(parse(t, `{"timestamp":"2025-11-27T10:00:00Z","event":"FSDJump","StarSystem":"Sol","SystemAddress":10477373803}`))
	f.live.OnEvent(parse(t, `{"timestamp":"2025-11-27T10:01:00Z","event":"Scan","BodyName":"Earth","BodyID":3}`))

	var recs []systems.SystemRecord
	getJSON(t, f.srv.URL+"/api/systems", &recs)
	if len(recs) != 1 || recs[0].SystemName != "Sol" {
		t.Errorf("expected Sol, got %+v", recs)
	}

	var cur systems.SystemRecord
	if code := getJSON(t, f.srv.URL+"/api/systems/current", &cur); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if cur.SystemAddress != 10477373803 {
		t.Errorf("expected Sol address, got %d", cur.SystemAddress)
	}
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t)

	if code := getJSON(t, f.srv.URL+"/api/status", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 without a snapshot, got %d", code)
	}

	f.status.Store(parse(t, `{"timestamp":"2025-11-27T10:00:00Z","event":"Status","Flags":131073,"Flags2":0}`).(*model.Status))

	var body struct {
		Active []string `json:"active"`
	}
	if code := getJSON(t, f.srv.URL+"/api/status", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Active) != 2 {
		t.Errorf("expected 2 active flags, got %v", body.Active)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebSocketStream(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The handler subscribes after the upgrade; keep publishing until the
	// first message arrives.
	ev := parse(t, `{"timestamp":"2025-11-27T10:00:00Z","event":"FSDJump","StarSystem":"Sol","SystemAddress":1}`)
	got := make(chan wsMessage, 1)
	go func() {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err == nil {
			got <- msg
		}
	}()

	deadline := time.After(2 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case msg := <-got:
			if msg.Kind != "FSD_JUMP" {
				t.Errorf("expected FSD_JUMP, got %s", msg.Kind)
			}
			if !strings.Contains(msg.Text, "system=Sol") {
				t.Errorf("expected formatted text, got %q", msg.Text)
			}
			return
		case <-tick.C:
			f.hub.OnEvent(ev)
		case <-deadline:
			t.Fatal("timed out waiting for websocket message")
		}
	}
}
