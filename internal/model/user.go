package model

import "time"

// User represents a registered guest as stored in the `users` table.
// The json tags are omitted because these structs are used by the
// repository and service layers; handlers define their own response
// types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, normalised (lower-case) email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – given name.
//  Surname      – family name.
//  Phone        – contact phone number (free form).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	Surname      string    // users.surname
	Phone        string    // users.phone
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
}

// UserContext is the minimal identity attached to an authenticated
// request once its bearer token has been validated.
type UserContext struct {
	ID    uint64
	Email string
	Name  string
}
