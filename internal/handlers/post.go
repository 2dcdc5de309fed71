package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/nvellek/agora/internal/metrics"
	"github.com/nvellek/agora/internal/middleware"
	"github.com/nvellek/agora/internal/repo"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 10

type PostHandler struct {
	Repo      *repo.PostRepo
	Replies   *repo.ReplyRepo
	AuditRepo *repo.AuditRepo
}

//
// ==========================
// List Posts
// ==========================
//

// ListPosts returns one page of posts, newest first. Pages beyond the last
// yield an empty slice rather than an error.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}

	posts, err := h.Repo.ListPage(r.Context(), PageSize, (page-1)*PageSize)
	if err != nil {
		slog.Error("posts: list", "err", err)
		JSONError(w, "failed to fetch posts", http.StatusInternalServerError)
		return
	}

	total, err := h.Repo.Count(r.Context())
	if err != nil {
		slog.Error("posts: count", "err", err)
		JSONError(w, "failed to fetch posts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts":     posts,
		"page":      page,
		"pageCount": (total + PageSize - 1) / PageSize,
	})
}

//
// ==========================
// Create Post
// ==========================
//

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title   string `json:"title" validate:"required,max=255"`
		Content string `json:"content" validate:"required,max=10000"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, "title and content are required", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	username, _ := middleware.GetUsername(r.Context())

	post, err := h.Repo.Create(r.Context(), userID, input.Title, input.Content)
	if err != nil {
		slog.Error("posts: create", "err", err)
		JSONError(w, "failed to create post", http.StatusInternalServerError)
		return
	}
	post.Author = username

	h.audit(r, userID, "create", post.ID)
	metrics.IncContentMutation("post", "create")

	writeJSON(w, http.StatusOK, post)
}

//
// ==========================
// Get Post With Replies
// ==========================
//

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	post, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "post not found", http.StatusNotFound)
		return
	}

	replies, err := h.Replies.ListByPost(r.Context(), id)
	if err != nil {
		slog.Error("posts: list replies", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":    post,
		"replies": replies,
	})
}

//
// ==========================
// Update Post
// ==========================
//

// UpdatePost lets the author change title and/or content. Omitted fields keep
// their previous values.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	var input struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	post, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "post not found", http.StatusNotFound)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if post.AuthorID != userID {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	title := post.Title
	if input.Title != nil {
		title = *input.Title
	}
	content := post.Content
	if input.Content != nil {
		content = *input.Content
	}

	updated, err := h.Repo.UpdateByID(r.Context(), id, title, content)
	if err != nil {
		slog.Error("posts: update", "err", err)
		JSONError(w, "failed to update post", http.StatusInternalServerError)
		return
	}
	updated.Author = post.Author

	h.audit(r, userID, "update", id)
	metrics.IncContentMutation("post", "update")

	writeJSON(w, http.StatusOK, updated)
}

//
// ==========================
// Delete Post (cascades replies)
// ==========================
//

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	post, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "post not found", http.StatusNotFound)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if post.AuthorID != userID {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.Repo.DeleteCascade(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "post not found", http.StatusNotFound)
			return
		}
		slog.Error("posts: delete", "err", err)
		JSONError(w, "failed to delete post", http.StatusInternalServerError)
		return
	}

	h.audit(r, userID, "delete", id)
	metrics.IncContentMutation("post", "delete")

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// postID parses the {id} URL param. A malformed identifier reads as a missing
// resource, so it answers 404 rather than 400.
func postID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "post not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *PostHandler) audit(r *http.Request, userID int, action string, postID int) {
	if h.AuditRepo == nil {
		return
	}
	if err := h.AuditRepo.Log(r.Context(), userID, action, "post", postID, ""); err != nil {
		slog.Error("posts: audit log", "err", err)
	}
}
