package models

import "time"

// User is the local account record. The identity provider owns credentials;
// this record owns profile, role and the cart snapshot. CartVersion is the
// optimistic-concurrency counter guarding cart writes.
type User struct {
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	ProviderUID string    `json:"-"`
	IsAdmin     bool      `json:"isAdmin"`
	Cart        Cart      `json:"cart"`
	CartVersion int64     `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SignupRequest creates an account at the identity provider and locally.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateUserRequest changes profile fields; empty fields are left as-is.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
