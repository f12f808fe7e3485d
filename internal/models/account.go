// Package models holds the entities shared by the stores, services and HTTP layer.
package models

import "time"

type Account struct {
	ID           int64      `json:"id" db:"id" bson:"_id"`
	Email        string     `json:"email" db:"email" bson:"email"`
	FirstName    string     `json:"firstName" db:"first_name" bson:"firstName"`
	LastName     string     `json:"lastName" db:"last_name" bson:"lastName"`
	PhoneNumber  string     `json:"phoneNumber,omitempty" db:"phone_number" bson:"phoneNumber,omitempty"`
	PasswordHash string     `json:"-" db:"password_hash" bson:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt" db:"deleted_at" bson:"deletedAt,omitempty"`
}

type Seller struct {
	ID           int64      `json:"id" db:"id" bson:"_id"`
	Name         string     `json:"name" db:"name" bson:"name"`
	Email        string     `json:"email" db:"email" bson:"email"`
	PhoneNumber  string     `json:"phoneNumber,omitempty" db:"phone_number" bson:"phoneNumber,omitempty"`
	CompanyName  string     `json:"companyName" db:"company_name" bson:"companyName"`
	PasswordHash string     `json:"-" db:"password_hash" bson:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt" db:"deleted_at" bson:"deletedAt,omitempty"`
}

// Roles carried in issued tokens.
const (
	RoleAccount = "account"
	RoleSeller  = "seller"
)
