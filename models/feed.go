package models

import "time"

type FeedTimeline struct {
	Data     []FeedPost   `json:"data"`
	Includes FeedIncludes `json:"includes"`
}

type FeedIncludes struct {
	Users []FeedAuthor `json:"users"`
}

type FeedPost struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedAuthor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
