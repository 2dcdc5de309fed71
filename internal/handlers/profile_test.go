package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nvellek/agora/internal/repo"
)

func TestProfileHandler_GetProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	joined := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "email", "role", "last_active", "created_at"}).
			AddRow(1, "alice", "$2a$10$hash", "alice@example.com", "user", time.Now(), joined))
	mock.ExpectQuery(`WHERE p.author_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author_id", "username", "created_at", "updated_at"}).
			AddRow(2, "second", "b", 1, "alice", time.Now(), nil).
			AddRow(1, "first", "a", 1, "alice", time.Now().Add(-time.Hour), nil))

	h := &ProfileHandler{Users: repo.NewUserRepo(db), Posts: repo.NewPostRepo(db)}

	req := requestWithChiURLParams("GET", "/user/alice", nil, map[string]string{"username": "alice"})
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetProfile status: got %d, want 200", rr.Code)
	}
	var out struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Badge    string `json:"badge"`
		Joined   string `json:"joined"`
		Posts    []struct {
			Title string `json:"title"`
		} `json:"posts"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Username != "alice" || out.Email != "alice@example.com" {
		t.Errorf("unexpected profile: %+v", out)
	}
	if out.Badge != "" {
		t.Errorf("expected no badge for default role, got: %q", out.Badge)
	}
	if len(out.Posts) != 2 || out.Posts[0].Title != "second" {
		t.Errorf("expected posts newest-first, got: %+v", out.Posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_GetProfile_AdminBadge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("root").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "email", "role", "last_active", "created_at"}).
			AddRow(1, "root", "$2a$10$hash", "", "admin", time.Now(), time.Now()))
	mock.ExpectQuery(`WHERE p.author_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author_id", "username", "created_at", "updated_at"}))

	h := &ProfileHandler{Users: repo.NewUserRepo(db), Posts: repo.NewPostRepo(db)}

	req := requestWithChiURLParams("GET", "/user/root", nil, map[string]string{"username": "root"})
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetProfile status: got %d, want 200", rr.Code)
	}
	var out struct {
		Badge string `json:"badge"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Badge != "admin" {
		t.Errorf("expected admin badge, got: %q", out.Badge)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_GetProfile_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	h := &ProfileHandler{Users: repo.NewUserRepo(db), Posts: repo.NewPostRepo(db)}

	req := requestWithChiURLParams("GET", "/user/ghost", nil, map[string]string{"username": "ghost"})
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("GetProfile status: got %d, want 404", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
