package models

// User exists for admin scaffolding; no handler exposes it yet.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}
