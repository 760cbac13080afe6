package model

import (
	"gorm.io/gorm"
)

// Role is the closed set of authorization roles a user can hold.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Username     string  `gorm:"column:username;not null"`
	Email        string  `gorm:"column:email;unique;not null"`
	Password     string  `gorm:"column:password;not null"`
	Confirmed    bool    `gorm:"column:confirmed;default:false;not null"`
	RefreshToken *string `gorm:"column:refresh_token;default:null"`
	Avatar       *string `gorm:"column:avatar;default:null"`
	Role         Role    `gorm:"column:role;type:varchar(16);default:'user';not null"`
}
