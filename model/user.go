package model

import (
	"time"

	"gorm.io/gorm"
)

/*

User is a data model for a journaling user

Id: primary key, use to identify a user
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted. Entries authored by a deleted user
are filtered out of feed reads instead of erroring.

Username: display name, unique
Email: login email, unique
AccessToken: opaque bearer credential looked up by the auth middleware
CurrentStreak: consecutive journaling days, fully recomputed from the user's
entry timestamps on every evaluation rather than incremented in place
Following: users this user follows, "many-to-many" relation
Badges: gamification badges this user unlocked, award relation rows

*/

type User struct {
	Id            string    `gorm:"primaryKey"`
	CreatedAt     time.Time `gorm:"<-:create"`
	DeletedAt     gorm.DeletedAt
	Username      string `gorm:"uniqueIndex"`
	Email         string `gorm:"uniqueIndex"`
	AccessToken   string `gorm:"index" json:"-"`
	CurrentStreak int
	Following     []*User      `json:"following" gorm:"many2many:user_follows;joinForeignKey:UserId;joinReferences:TargetId"`
	Badges        []*UserBadge `json:"badges" gorm:"foreignKey:UserId"`
}

func (u User) GetID() string   { return u.Id }
func (u User) GetName() string { return u.Username }
