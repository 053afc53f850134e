package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant statuses mirror the current license state; Active is the derived
// gate checked by write-authorization elsewhere in the product.
const (
	TenantStatusActive     = "ACTIVE"
	TenantStatusExpired    = "EXPIRED"
	TenantStatusRestricted = "RESTRICTED"
	TenantStatusSuspended  = "SUSPENDED"
)

type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Subdomain string    `json:"subdomain" db:"subdomain"`
	Active    bool      `json:"active" db:"active"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
