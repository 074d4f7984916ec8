// Package model defines domain entities for the application.
package model

// Fixed profile values. The profile never varies between requests.
const (
	ProfileEmail = "abdulazeezabdulhammed001@gmail.com"
	ProfileName  = "Abdulazeez Abdulhammed"
	ProfileStack = "backend"
)

// User is the static profile returned by GET /me.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Stack string `json:"stack"`
}

// DefaultUser returns the fixed profile record.
func DefaultUser() User {
	return User{
		Email: ProfileEmail,
		Name:  ProfileName,
		Stack: ProfileStack,
	}
}
