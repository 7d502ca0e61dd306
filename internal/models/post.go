package models

import "time"

type Post struct {
	ID        int64       `json:"id"`
	Content   string      `json:"content"`
	User      UserProfile `json:"user"`
	LikeCount int         `json:"likeCount"`
	Liked     bool        `json:"likedByCurrentUser"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PostPage is one page of a feed. The backend answers either with a bare array
// or with a paged object; both decode into this.
type PostPage struct {
	Content []Post `json:"content"`
	Page    int    `json:"number"`
	Size    int    `json:"size"`
	Last    bool   `json:"last"`
}
