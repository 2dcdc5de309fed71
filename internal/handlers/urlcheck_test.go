package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nvellek/agora/internal/urlcheck"
)

// fakeReputationServer serves a fixed analysis verdict for every URL id.
func fakeReputationServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"attributes":{"last_analysis_stats":{"harmless":70,"malicious":2,"suspicious":0,"undetected":8}}}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newURLCheckHandler(srv *httptest.Server) *URLCheckHandler {
	return &URLCheckHandler{Checker: &urlcheck.Client{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}}
}

func TestURLCheckHandler_CheckURL(t *testing.T) {
	h := newURLCheckHandler(fakeReputationServer(t))

	req := httptest.NewRequest("POST", "/check_url", strings.NewReader(`{"url":"http://example.com"}`))
	rr := httptest.NewRecorder()
	h.CheckURL(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("CheckURL status: got %d, want 200", rr.Code)
	}
	var out struct {
		Status string `json:"status"`
		Stats  struct {
			Malicious int `json:"malicious"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != "found" || out.Stats.Malicious != 2 {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestURLCheckHandler_CheckURL_MissingURL(t *testing.T) {
	h := newURLCheckHandler(fakeReputationServer(t))

	req := httptest.NewRequest("POST", "/check_url", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.CheckURL(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("CheckURL status: got %d, want 400", rr.Code)
	}
}

func TestURLCheckHandler_Command_CheckReply(t *testing.T) {
	h := newURLCheckHandler(fakeReputationServer(t))

	body := `{"command":"@antiphish run check http://example.com"}`
	req := httptest.NewRequest("POST", "/command", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Command(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Command status: got %d, want 200", rr.Code)
	}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := "VirusTotal scan results for http://example.com:\nHarmless: 70\nMalicious: 2\nSuspicious: 0\nUndetected: 8"
	if out.Reply != want {
		t.Errorf("reply:\ngot  %q\nwant %q", out.Reply, want)
	}
}

func TestURLCheckHandler_Command_Unknown(t *testing.T) {
	h := newURLCheckHandler(fakeReputationServer(t))

	req := httptest.NewRequest("POST", "/command", strings.NewReader(`{"command":"@antiphish run dance"}`))
	rr := httptest.NewRecorder()
	h.Command(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Command status: got %d, want 200", rr.Code)
	}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Reply != "Unknown command." {
		t.Errorf("reply: got %q, want %q", out.Reply, "Unknown command.")
	}
}

func TestURLCheckHandler_Command_MissingURL(t *testing.T) {
	h := newURLCheckHandler(fakeReputationServer(t))

	req := httptest.NewRequest("POST", "/command", strings.NewReader(`{"command":"@antiphish run check"}`))
	rr := httptest.NewRecorder()
	h.Command(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Command status: got %d, want 400", rr.Code)
	}
}
