package model

import (
	"time"
)

/*

MoodEntry is a data model for one journal submission

Id: primary key, assigned at creation
CreatedAt: time when entity is created, basis for streaks and feed ordering
AuthorId: user who wrote the entry, immutable after creation
RawText: the user's free-text journaling input, immutable
MoodAnalysis: the mood string the inference collaborator derived, immutable
Category: closed mood category derived from MoodAnalysis, immutable
Song: the suggested song, immutable once set
Shared: visibility. false means private, true means shared to the feed.
Transitions private -> shared exactly once, no code path un-shares.

Likes, LikedByViewer and AuthorName are hydrated at read time (likes from
the Redis like store, author names by an explicit join) and never stored on
the row.

*/

type MoodEntry struct {
	Id           string    `gorm:"primaryKey"`
	CreatedAt    time.Time `gorm:"<-:create;index:idx_mood_entries_created_at_id,priority:1"`
	AuthorId     string    `gorm:"index"`
	RawText      string
	MoodAnalysis string
	Category     string `gorm:"index"`
	Song         Song   `gorm:"embedded;embeddedPrefix:song_"`
	Shared       bool   `gorm:"default:FALSE"`

	Comments []*Comment `json:"comments" gorm:"foreignKey:EntryId"`

	Likes         []string `json:"likes" gorm:"-" sql:"-"`
	LikedByViewer bool     `json:"likedByViewer" gorm:"-" sql:"-"`
	AuthorName    string   `json:"authorName" gorm:"-" sql:"-"`
}

// Song is the suggested track embedded into a mood entry.
type Song struct {
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	Genre        string  `json:"genre"`
	ExternalLink string  `json:"externalLink"`
	PreviewLink  *string `json:"previewLink,omitempty"`
}
