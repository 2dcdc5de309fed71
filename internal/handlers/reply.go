package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nvellek/agora/internal/metrics"
	"github.com/nvellek/agora/internal/middleware"
	"github.com/nvellek/agora/internal/repo"
)

type ReplyHandler struct {
	Repo      *repo.ReplyRepo
	Posts     *repo.PostRepo
	AuditRepo *repo.AuditRepo
}

//
// ==========================
// Create Reply
// ==========================
//

// CreateReply adds a reply to an existing post. Replies cannot be created
// against a missing post.
func (h *ReplyHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "post not found", http.StatusNotFound)
		return
	}

	var input struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Content == "" {
		JSONValidationError(w, "content is required", map[string]string{"content": "required"}, http.StatusBadRequest)
		return
	}

	if _, err := h.Posts.GetByID(r.Context(), postID); err != nil {
		JSONError(w, "post not found", http.StatusNotFound)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	username, _ := middleware.GetUsername(r.Context())

	reply, err := h.Repo.Create(r.Context(), postID, userID, input.Content)
	if err != nil {
		slog.Error("replies: create", "err", err)
		JSONError(w, "failed to create reply", http.StatusInternalServerError)
		return
	}
	reply.Author = username

	h.audit(r, userID, "create", reply.ID)
	metrics.IncContentMutation("reply", "create")

	writeJSON(w, http.StatusOK, reply)
}

//
// ==========================
// Update Reply
// ==========================
//

func (h *ReplyHandler) UpdateReply(w http.ResponseWriter, r *http.Request) {
	id, ok := replyID(w, r)
	if !ok {
		return
	}

	var input struct {
		Content *string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	reply, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "reply not found", http.StatusNotFound)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if reply.AuthorID != userID {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	content := reply.Content
	if input.Content != nil {
		content = *input.Content
	}

	updated, err := h.Repo.UpdateByID(r.Context(), id, content)
	if err != nil {
		slog.Error("replies: update", "err", err)
		JSONError(w, "failed to update reply", http.StatusInternalServerError)
		return
	}
	updated.Author = reply.Author

	h.audit(r, userID, "update", id)
	metrics.IncContentMutation("reply", "update")

	writeJSON(w, http.StatusOK, updated)
}

//
// ==========================
// Delete Reply
// ==========================
//

func (h *ReplyHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	id, ok := replyID(w, r)
	if !ok {
		return
	}

	reply, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "reply not found", http.StatusNotFound)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if reply.AuthorID != userID {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.Repo.DeleteByID(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "reply not found", http.StatusNotFound)
			return
		}
		slog.Error("replies: delete", "err", err)
		JSONError(w, "failed to delete reply", http.StatusInternalServerError)
		return
	}

	h.audit(r, userID, "delete", id)
	metrics.IncContentMutation("reply", "delete")

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func replyID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "reply not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *ReplyHandler) audit(r *http.Request, userID int, action string, replyID int) {
	if h.AuditRepo == nil {
		return
	}
	if err := h.AuditRepo.Log(r.Context(), userID, action, "reply", replyID, ""); err != nil {
		slog.Error("replies: audit log", "err", err)
	}
}
