package company

import "time"

// Company is the tenant: the employer whose payroll is calculated. Its ID is the
// tenant_id carried by every other record.
type Company struct {
	ID        string
	Name      string
	Bulstat   string // employer identification code used in regulator files
	Address   *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
