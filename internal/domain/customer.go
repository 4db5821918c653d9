package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a buyer. Phone is unique, email is optional but unique when present.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Address   *string   `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CustomerFilter narrows customer listings. Search matches name, email or phone.
type CustomerFilter struct {
	Search    string
	Limit     int
	Offset    int
	SortBy    string
	SortOrder SortOrder
}
