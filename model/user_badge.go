package model

import (
	"time"

	"gorm.io/gorm"
)

/*

UserBadge is the award relation between a user and a badge from the
code-defined badge catalog

UserId: user id
BadgeId: catalog badge id, e.g. "streak-7"
UnlockedAt: time when the badge was unlocked

The composite primary key keeps the relation a set: awarding an already-held
badge is a no-op insert, never a second row.

*/

type UserBadge struct {
	UserId     string `gorm:"primaryKey"`
	BadgeId    string `gorm:"primaryKey"`
	UnlockedAt time.Time
}

func (UserBadge) BeforeCreate(db *gorm.DB) error {
	return nil
}
