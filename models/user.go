package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SeasonRecord mirrors the legacy flat stats entries kept on the user
// document (stats.season2025, stats.allTime). Superseded by the hierarchical
// WeekStats/SeasonStats aggregates but still refreshed for old readers.
type SeasonRecord struct {
	Wins          int     `json:"wins" bson:"wins"`
	Losses        int     `json:"losses" bson:"losses"`
	WinPercentage float64 `json:"winPercentage" bson:"winPercentage"`
}

// User represents a user in the system. ID is a uuid string.
type User struct {
	ID              string                  `json:"id" bson:"_id"`
	DisplayName     string                  `json:"displayName" bson:"display_name"`
	PhotoURL        string                  `json:"photoURL" bson:"photo_url,omitempty"`
	Email           string                  `json:"email" bson:"email"`
	Password        string                  `json:"-" bson:"password"` // never serialized
	Stats           map[string]SeasonRecord `json:"stats,omitempty" bson:"stats,omitempty"`
	LastStatsUpdate *time.Time              `json:"lastStatsUpdate,omitempty" bson:"last_stats_update,omitempty"`
	CreatedAt       time.Time               `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time               `json:"updatedAt" bson:"updated_at"`
}

// LoginRequest represents login form data
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents signup form data
type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// AuthResponse is returned after successful authentication
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// HashPassword hashes the user's password using bcrypt
func (u *User) HashPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword verifies the provided password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// ToSafeUser returns a copy of the user without credential fields
func (u *User) ToSafeUser() User {
	return User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
