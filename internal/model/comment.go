package model

import "time"

// Comment is a free-text message posted by a user.
// Username is joined from users on read and after insert; it is not stored.
type Comment struct {
	ID        string    `json:"id"         db:"id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Username  string    `json:"username"   db:"username"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
