package models

import "time"

type Reply struct {
	ID        int        `json:"id"`
	PostID    int        `json:"post_id"`
	Content   string     `json:"content"`
	AuthorID  int        `json:"-"`
	Author    string     `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
