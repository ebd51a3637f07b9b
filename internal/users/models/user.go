// Package models defines the identity records owned by the users service.
package models

import "time"

// AuthType records which flow created an identity.
type AuthType string

const (
	AuthBasic  AuthType = "BASIC"
	AuthGoogle AuthType = "GOOGLE"
)

// User is one identity record. PasswordHash is empty for externally
// authenticated identities; email is unique and enforced by the store.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AuthType     AuthType  `json:"authType"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLoginAt  time.Time `json:"lastLoginAt"`
}
