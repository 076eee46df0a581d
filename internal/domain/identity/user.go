package identity

import (
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/outpost-commerce/backend/internal/domain/shared"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is the aggregate root for a storefront account
type User struct {
	shared.BaseAggregateRoot
	Name         string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(200);not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with a hashed password
func NewUser(name, email, password string) (*User, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Name cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid email address")
	}
	if len(password) < 6 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
	}, nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string) error {
	if len(newPassword) < 6 {
		return shared.NewDomainError("VALIDATION_ERROR", "Password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword checks a candidate password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLoginSuccess stamps the last successful login
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}
