package models

import "time"

// Branch is an organizational scope owning transactions and users
type Branch struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateBranchRequest is the payload for a new branch
type CreateBranchRequest struct {
	Code string `json:"code" validate:"required,alphanum,max=10"`
	Name string `json:"name" validate:"required,max=255"`
}
