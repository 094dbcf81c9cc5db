package models

import "time"

// User is the local mirror of an identity supplied by the upstream
// authentication layer. Accidents keep a foreign key to it.
type User struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;column:user_id"`
	Username  string    `json:"username" gorm:"column:username;size:150;not null;uniqueIndex"`
	FullName  string    `json:"full_name" gorm:"column:full_name;size:255"`
	Role      Role      `json:"role" gorm:"column:role;size:20;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
