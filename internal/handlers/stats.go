package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nvellek/agora/internal/repo"
)

// StatsHandler reports board-wide counts.
type StatsHandler struct {
	Users   *repo.UserRepo
	Posts   *repo.PostRepo
	Replies *repo.ReplyRepo
}

// GetStats returns user, post, and reply totals.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Count(r.Context())
	if err != nil {
		slog.Error("stats: count users", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	posts, err := h.Posts.Count(r.Context())
	if err != nil {
		slog.Error("stats: count posts", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	replies, err := h.Replies.Count(r.Context())
	if err != nil {
		slog.Error("stats: count replies", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"users":   users,
		"posts":   posts,
		"replies": replies,
	})
}
