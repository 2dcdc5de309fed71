package repo

import (
	"context"
	"database/sql"

	"github.com/nvellek/agora/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type PostRepo struct {
	DB *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

// ========================
// CREATE POST
// ========================

func (r *PostRepo) Create(ctx context.Context, authorID int, title, content string) (models.Post, error) {
	var post models.Post
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO posts (author_id, title, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, content, author_id, created_at, updated_at`,
		authorID, title, content,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	return post, err
}

// ========================
// GET POST BY ID
// ========================

func (r *PostRepo) GetByID(ctx context.Context, id int) (models.Post, error) {
	var post models.Post
	err := r.DB.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.content, p.author_id, u.username, p.created_at, p.updated_at
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`,
		id,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.Author,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	return post, err
}

// ========================
// UPDATE POST BY ID
// ========================

func (r *PostRepo) UpdateByID(ctx context.Context, id int, title, content string) (models.Post, error) {
	var post models.Post
	err := r.DB.QueryRowContext(ctx,
		`UPDATE posts
		 SET title = $1, content = $2, updated_at = now()
		 WHERE id = $3
		 RETURNING id, title, content, author_id, created_at, updated_at`,
		title, content, id,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	return post, err
}

// ========================
// DELETE POST WITH REPLIES
// ========================

// DeleteCascade removes a post and every reply referencing it in one
// transaction, replies first, so no half-deleted state is ever visible.
// Returns sql.ErrNoRows when the post does not exist.
func (r *PostRepo) DeleteCascade(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM replies WHERE post_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// ========================
// LIST POSTS (PAGINATED)
// ========================

// ListPage returns posts newest-first with author usernames resolved.
func (r *PostRepo) ListPage(ctx context.Context, limit, offset int) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.author_id, u.username, p.created_at, p.updated_at
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// ========================
// LIST POSTS BY AUTHOR
// ========================

func (r *PostRepo) ListByAuthor(ctx context.Context, authorID int) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.author_id, u.username, p.created_at, p.updated_at
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.author_id = $1
		 ORDER BY p.created_at DESC`,
		authorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// ========================
// COUNT POSTS
// ========================

func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Author, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
