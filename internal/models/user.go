package models

import (
	"time"
)

// User is a lot operator, provisioned from auth token claims on first request
type User struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	var errs ValidationErrors
	if u.ID == "" {
		errs = append(errs, &ValidationError{Field: "sub", Message: "user ID is required"})
	}
	if u.OrgID == "" {
		errs = append(errs, &ValidationError{Field: "org_id", Message: "organization ID is required"})
	}
	return errs.OrNil()
}
