package models

import "time"

// Post is a single item in a digest. AuthorName and AuthorHandle are filled
// in when the feed API returned an expanded author record for AuthorID.
type Post struct {
	ID           string
	Text         string
	AuthorID     string
	AuthorName   string
	AuthorHandle string
	CreatedAt    time.Time
}

type Author struct {
	ID       string
	Name     string
	Username string
}

// Timeline is one account's recent posts plus the author records the feed
// API expanded for them, keyed by author id.
type Timeline struct {
	Posts   []Post
	Authors map[string]Author
}
