package domain

import (
	"strings"
	"time"
)

// Role is the single discriminator for what a user may do.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	State        string    `json:"state"`
	District     string    `json:"district"`
	City         string    `json:"city"`
	PhoneNumber  string    `json:"phone_number"`
	RewardPoints int       `json:"reward_points"`
	Role         Role      `json:"role"`
	AdminID      string    `json:"admin_id,omitempty"` // set only for employees
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CityKey is the tenancy key derived from the user's city.
func (u *User) CityKey() string {
	return NormalizeCity(u.City)
}

// NormalizeCity folds a free-text city into the key used for tenancy matching,
// so "Ahmedabad " and "ahmedabad" land in the same jurisdiction.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
