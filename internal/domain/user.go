package domain

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                int64      `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Email             string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash      string     `json:"-" gorm:"size:255;not null"`
	FirstName         string     `json:"first_name" gorm:"size:50;not null"`
	LastName          string     `json:"last_name" gorm:"size:50;not null"`
	Role              Role       `json:"role" gorm:"size:16;not null;default:'buyer'"`
	IsActive          bool       `json:"is_active" gorm:"not null;default:true"`
	EmailVerified     bool       `json:"email_verified" gorm:"not null;default:false"`
	VerificationToken *string    `json:"-" gorm:"size:64;uniqueIndex"`
	ResetToken        *string    `json:"-" gorm:"size:64;uniqueIndex"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) CanSell() bool { return u.Role == RoleSeller || u.Role == RoleAdmin }

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
