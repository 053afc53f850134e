package models

import (
	"time"

	"github.com/google/uuid"
)

// License kinds.
const (
	LicenseTypeTrial   = "TRIAL"
	LicenseTypeAnnual  = "ANNUAL"
	LicenseTypeRenewal = "RENEWAL"
)

// License statuses. At most one ACTIVE license exists per tenant; granting a
// new license supersedes the prior active one to SUSPENDED.
const (
	LicenseStatusActive     = "ACTIVE"
	LicenseStatusExpired    = "EXPIRED"
	LicenseStatusRestricted = "RESTRICTED"
	LicenseStatusSuspended  = "SUSPENDED"
)

type License struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Type          string    `json:"type" db:"type"`
	Status        string    `json:"status" db:"status"`
	StartsAt      time.Time `json:"starts_at" db:"starts_at"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	ProcessNumber *string   `json:"process_number" db:"process_number"`
	GrantedBy     string    `json:"granted_by" db:"granted_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

func ValidLicenseType(t string) bool {
	switch t {
	case LicenseTypeTrial, LicenseTypeAnnual, LicenseTypeRenewal:
		return true
	}
	return false
}
