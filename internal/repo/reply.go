package repo

import (
	"context"
	"database/sql"

	"github.com/nvellek/agora/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type ReplyRepo struct {
	DB *sql.DB
}

func NewReplyRepo(db *sql.DB) *ReplyRepo {
	return &ReplyRepo{DB: db}
}

// ========================
// CREATE REPLY
// ========================

func (r *ReplyRepo) Create(ctx context.Context, postID, authorID int, content string) (models.Reply, error) {
	var reply models.Reply
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO replies (post_id, author_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, post_id, content, author_id, created_at, updated_at`,
		postID, authorID, content,
	).Scan(
		&reply.ID,
		&reply.PostID,
		&reply.Content,
		&reply.AuthorID,
		&reply.CreatedAt,
		&reply.UpdatedAt,
	)
	return reply, err
}

// ========================
// GET REPLY BY ID
// ========================

func (r *ReplyRepo) GetByID(ctx context.Context, id int) (models.Reply, error) {
	var reply models.Reply
	err := r.DB.QueryRowContext(ctx,
		`SELECT rp.id, rp.post_id, rp.content, rp.author_id, u.username, rp.created_at, rp.updated_at
		 FROM replies rp
		 JOIN users u ON u.id = rp.author_id
		 WHERE rp.id = $1`,
		id,
	).Scan(
		&reply.ID,
		&reply.PostID,
		&reply.Content,
		&reply.AuthorID,
		&reply.Author,
		&reply.CreatedAt,
		&reply.UpdatedAt,
	)
	return reply, err
}

// ========================
// UPDATE REPLY BY ID
// ========================

func (r *ReplyRepo) UpdateByID(ctx context.Context, id int, content string) (models.Reply, error) {
	var reply models.Reply
	err := r.DB.QueryRowContext(ctx,
		`UPDATE replies
		 SET content = $1, updated_at = now()
		 WHERE id = $2
		 RETURNING id, post_id, content, author_id, created_at, updated_at`,
		content, id,
	).Scan(
		&reply.ID,
		&reply.PostID,
		&reply.Content,
		&reply.AuthorID,
		&reply.CreatedAt,
		&reply.UpdatedAt,
	)
	return reply, err
}

// ========================
// DELETE REPLY BY ID
// ========================

func (r *ReplyRepo) DeleteByID(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM replies WHERE id = $1`, id)
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
	return nil
}

// ========================
// LIST REPLIES FOR POST
// ========================

// ListByPost returns replies oldest-first with author usernames resolved.
func (r *ReplyRepo) ListByPost(ctx context.Context, postID int) ([]models.Reply, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT rp.id, rp.post_id, rp.content, rp.author_id, u.username, rp.created_at, rp.updated_at
		 FROM replies rp
		 JOIN users u ON u.id = rp.author_id
		 WHERE rp.post_id = $1
		 ORDER BY rp.created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []models.Reply{}
	for rows.Next() {
		var rep models.Reply
		if err := rows.Scan(&rep.ID, &rep.PostID, &rep.Content, &rep.AuthorID, &rep.Author, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, rep)
	}
	return replies, rows.Err()
}

// ========================
// COUNT REPLIES
// ========================

func (r *ReplyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM replies`).Scan(&n)
	return n, err
}
