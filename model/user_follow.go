package model

import (
	"time"

	"gorm.io/gorm"
)

/*

UserFollow is a "many-to-many" relation of a user following another user

UserId: the follower
TargetId: the user being followed
CreatedAt: time when relation is created

The composite primary key makes a duplicate follow a uniqueness violation
instead of a second row.

*/

type UserFollow struct {
	UserId    string `gorm:"primaryKey"`
	TargetId  string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (UserFollow) BeforeCreate(db *gorm.DB) error {
	return nil
}
