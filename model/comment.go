package model

import (
	"time"
)

/*

Comment is a data model for a comment on a mood entry

Id: primary key, server assigned
EntryId: entry the comment belongs to
AuthorId: user who wrote the comment
Text: comment body
CreatedAt: server assigned, insertion order of comments is significant and
comments are append-only

AuthorName is resolved by an explicit join at read time; author display data
is never denormalized into the row.

*/

type Comment struct {
	Id        string    `gorm:"primaryKey"`
	EntryId   string    `gorm:"index"`
	AuthorId  string    `gorm:"index"`
	Text      string
	CreatedAt time.Time `gorm:"<-:create"`

	AuthorName string `json:"authorName" gorm:"-" sql:"-"`
}
