package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Contact struct {
	gorm.Model
	FirstName      string         `gorm:"column:first_name;size:50;not null"`
	LastName       string         `gorm:"column:last_name;size:50;not null"`
	Email          string         `gorm:"column:email;size:50;not null;index"`
	Phone          string         `gorm:"column:phone;size:50;not null"`
	Birthday       datatypes.Date `gorm:"column:birthday;not null"`
	AdditionalData *string        `gorm:"column:additional_data;size:250"`
	UserID         uint           `gorm:"column:user_id;not null;index"`
	User           User           `gorm:"foreignKey:UserID"`
}
