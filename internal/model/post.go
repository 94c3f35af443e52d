package model

import "time"

// Post represents an entry in a room's message feed as stored in the
// `posts` table. Attachments live in their own table and are loaded
// alongside the post.
//
// Fields:
//  ID          – primary key identifier of the post.
//  RoomID      – room the post belongs to.
//  AuthorID    – user who wrote the post.
//  Text        – message body.
//  Attachments – links attached to the post.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Post struct {
	ID          uint64    // posts.id
	RoomID      uint64    // posts.room_id
	AuthorID    uint64    // posts.author_id
	Text        string    // posts.text
	Attachments []string  // attachments.link rows for this post
	CreatedAt   time.Time // posts.created_at
	UpdatedAt   time.Time // posts.updated_at
}
