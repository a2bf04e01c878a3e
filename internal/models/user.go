package models

import "time"

// User is the authoritative identity record owned by the auth service.
// The password hash never leaves the credential store's service.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255)"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(100)"`
	LastName     string    `json:"lastName" gorm:"type:varchar(100)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the password-less projection of an identity. It is the
// shape returned by every endpoint and by token verification.
type PublicUser struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Public derives the response-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// MirrorUser is the user service's replicated copy of an identity.
// Its primary key is assigned by the auth service, never generated
// locally: mirror rows only come into existence through replication.
type MirrorUser struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	FirstName string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string    `json:"last_name" gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the mirror in a "users" table like the authoritative
// store; the two live in different databases.
func (MirrorUser) TableName() string { return "users" }
