package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nvellek/agora/internal/models"
	"github.com/nvellek/agora/internal/repo"
)

// ProfileHandler serves public user profiles.
type ProfileHandler struct {
	Users *repo.UserRepo
	Posts *repo.PostRepo
}

// GetProfile returns a user's public profile with their posts, newest first.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.Users.GetByUsername(r.Context(), username)
	if err != nil {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}

	posts, err := h.Posts.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		slog.Error("profile: list posts", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	badge := ""
	if user.Role != models.RoleUser {
		badge = user.Role
	}

	writeJSON(w, http.StatusOK, models.Profile{
		Username: user.Username,
		Email:    user.Email,
		Badge:    badge,
		Joined:   user.CreatedAt,
		Posts:    posts,
	})
}
