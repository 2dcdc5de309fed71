package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nvellek/agora/internal/urlcheck"
)

// commandPrefix triggers a reputation lookup from a chat-style command,
// e.g. "@antiphish run check http://example.com".
const commandPrefix = "@antiphish run check"

// ==========================
// URL Check Handler
// ==========================
type URLCheckHandler struct {
	Checker *urlcheck.Client
}

// CheckURL looks up a URL's reputation and returns the raw result.
func (h *URLCheckHandler) CheckURL(w http.ResponseWriter, r *http.Request) {
	var input struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.URL == "" {
		JSONError(w, "missing 'url' parameter", http.StatusBadRequest)
		return
	}

	result, err := h.Checker.Check(r.Context(), input.URL)
	if err != nil {
		slog.Error("urlcheck: check", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Command parses a bot command and replies with a human-readable verdict.
// Unrecognized commands get a fixed reply rather than an error.
func (h *URLCheckHandler) Command(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Command == "" {
		JSONError(w, "missing 'command' parameter", http.StatusBadRequest)
		return
	}

	command := strings.TrimSpace(input.Command)
	if !strings.HasPrefix(strings.ToLower(command), commandPrefix) {
		writeJSON(w, http.StatusOK, map[string]string{"reply": "Unknown command."})
		return
	}

	parts := strings.Fields(command)
	if len(parts) < 4 {
		JSONError(w, "URL not provided in command", http.StatusBadRequest)
		return
	}
	target := parts[3]

	result, err := h.Checker.Check(r.Context(), target)
	if err != nil {
		slog.Error("urlcheck: command check", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	var message string
	if result.Status == urlcheck.StatusFound {
		message = fmt.Sprintf(
			"VirusTotal scan results for %s:\nHarmless: %d\nMalicious: %d\nSuspicious: %d\nUndetected: %d",
			target, result.Stats.Harmless, result.Stats.Malicious, result.Stats.Suspicious, result.Stats.Undetected,
		)
	} else if result.Message != "" {
		message = result.Message
	} else {
		message = "An error occurred."
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": message})
}
