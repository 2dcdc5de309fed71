package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO posts \(author_id, title, content\)`).
		WithArgs(1, "Hi", "body").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author_id", "created_at", "updated_at"}).
			AddRow(1, "Hi", "body", 1, time.Now(), nil))

	repo := NewPostRepo(db)
	post, err := repo.Create(context.Background(), 1, "Hi", "body")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ID != 1 || post.Title != "Hi" || post.AuthorID != 1 {
		t.Errorf("unexpected post: %+v", post)
	}
	if post.UpdatedAt != nil {
		t.Errorf("new post should have nil updated_at, got %v", post.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT p.id, p.title, p.content`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	repo := NewPostRepo(db)
	_, err = repo.GetByID(context.Background(), 999)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_ListPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`ORDER BY p.created_at DESC`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author_id", "username", "created_at", "updated_at"}).
			AddRow(2, "newer", "b", 1, "alice", now, nil).
			AddRow(1, "older", "a", 1, "alice", now.Add(-time.Hour), nil))

	repo := NewPostRepo(db)
	posts, err := repo.ListPage(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(posts) != 2 || posts[0].Title != "newer" || posts[0].Author != "alice" {
		t.Errorf("unexpected posts: %+v", posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_ListPage_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`ORDER BY p.created_at DESC`).
		WithArgs(10, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author_id", "username", "created_at", "updated_at"}))

	repo := NewPostRepo(db)
	posts, err := repo.ListPage(context.Background(), 10, 50)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("page past the end should be an empty non-nil slice, got: %#v", posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_DeleteCascade(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM replies WHERE post_id = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostRepo(db)
	if err := repo.DeleteCascade(context.Background(), 5); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_DeleteCascade_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM replies WHERE post_id = \$1`).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewPostRepo(db)
	err = repo.DeleteCascade(context.Background(), 999)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	repo := NewPostRepo(db)
	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 21 {
		t.Errorf("Count: got %d, want 21", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
