package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rondo-audio/rondo"
	"github.com/rondo-audio/rondo/api"
	"github.com/rondo-audio/rondo/engine"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	e, err := engine.New(rondo.DefaultConfig())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	h, err := api.NewHandler(e)
	if err != nil {
		t.Fatalf("api.NewHandler failed: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %v failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStatus(t *testing.T) {
	srv := newServer(t)
	resp := get(t, srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /status: %v", resp.Status)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("CORS header missing")
	}
	var s engine.Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("could not decode status: %v", err)
	}
	if s.SampleRate != 44100 || len(s.Tracks) != 5 {
		t.Errorf("status: %d Hz, %d tracks", s.SampleRate, len(s.Tracks))
	}
}

func TestTrack(t *testing.T) {
	srv := newServer(t)
	for _, id := range []string{"treble", "2"} {
		resp := get(t, srv.URL+"/tracks/"+id)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET /tracks/%s: %v", id, resp.Status)
		}
		var ts engine.TrackStatus
		if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
			t.Fatalf("could not decode track: %v", err)
		}
		if ts.Name != "treble" || ts.Index != 2 || len(ts.Events) == 0 {
			t.Errorf("GET /tracks/%s gave %q (index %d) with %d events", id, ts.Name, ts.Index, len(ts.Events))
		}
	}
	if resp := get(t, srv.URL+"/tracks/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /tracks/nope: %v, want 404", resp.Status)
	}
	if resp := get(t, srv.URL+"/tracks/9"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /tracks/9: %v, want 404", resp.Status)
	}
}

func TestTrackReport(t *testing.T) {
	srv := newServer(t)
	resp := get(t, srv.URL+"/tracks/bass/report")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /tracks/bass/report: %v", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("could not read report: %v", err)
	}
	if !strings.HasPrefix(string(body), "0: Bass") {
		t.Errorf("unexpected report:\n%s", body)
	}
}

func TestReadOnly(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Post(srv.URL+"/status", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /status: %v, want 405", resp.Status)
	}
}
