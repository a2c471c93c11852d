package users

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents an administrator role on the restaurant platform
type RoleType string

const (
	// Platform-level roles
	RoleSuperAdmin RoleType = "super_admin" // Can manage every restaurant and platform settings
	RoleSupport    RoleType = "support"     // Read-only access across restaurants

	// Restaurant-level roles
	RoleOwner   RoleType = "owner"   // Can manage staff, menus and promotions of owned restaurants
	RoleManager RoleType = "manager" // Day to day management of a restaurant
	RoleStaff   RoleType = "staff"   // Order handling only
)

// User is the identity snapshot the backend returns on login. The console does not
// interpret it beyond display and role checks; it is persisted as JSON with the session.
type User struct {
	ID            string   `json:"id,omitempty"`
	Email         string   `json:"email,omitempty"`
	FirstName     string   `json:"firstName,omitempty"`
	LastName      string   `json:"lastName,omitempty"`
	PhoneNumber   string   `json:"phoneNumber,omitempty"`
	Role          RoleType `json:"role,omitempty"`
	RestaurantIDs []string `json:"restaurantIds,omitempty"`
}

// DisplayName returns the name shown in the console header
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}

// IsSuperAdmin returns true if the user has platform-wide privileges
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// HasRestaurant reports whether the user is attached to the restaurant.
// Super admins have access to all restaurants.
func (u *User) HasRestaurant(restaurantID string) bool {
	if u == nil {
		return false
	}
	if u.IsSuperAdmin() {
		return true
	}
	for _, id := range u.RestaurantIDs {
		if id == restaurantID {
			return true
		}
	}
	return false
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
