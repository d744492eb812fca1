package models

import "time"

// User is the application profile of a Firebase Auth user. The document ID is the Firebase UID.
type User struct {
	ID          string    `json:"id" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	Role        string    `json:"role" firestore:"role"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// Role groups capability strings.
type Role struct {
	ID          string   `json:"id" firestore:"-" yaml:"id"`
	Name        string   `json:"name" firestore:"name" yaml:"name"`
	Permissions []string `json:"permissions" firestore:"permissions" yaml:"permissions"`
	Description string   `json:"description,omitempty" firestore:"description,omitempty" yaml:"description"`
}

// Has reports whether the role grants perm.
func (r *Role) Has(perm string) bool {
	for _, p := range r.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Session is what the session verification endpoint returns.
type Session struct {
	User        *User    `json:"user"`
	Permissions []string `json:"permissions"`
}
