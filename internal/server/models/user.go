package models

import "time"

// User is a registered account. Password holds the encoded argon2id hash.
type User struct {
	ID        int64
	Email     string
	Password  string
	CreatedAt time.Time
}
