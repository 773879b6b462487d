package domain

import "github.com/google/uuid"

// Establishment is a physical shop of a tenant. Catalog and CRUD live elsewhere;
// the ledger only needs identity and whether it may still sell.
type Establishment struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Active   bool      `json:"active"`
}

// Register is a cash register (till) inside an establishment. Its row is the
// per-register serialization point for sales, cancellations and closures.
type Register struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	EstablishmentID uuid.UUID `json:"establishment_id"`
	Name            string    `json:"name"`
	Active          bool      `json:"active"`
}

// BelongsTo reports whether the register is owned by tenantID.
func (r *Register) BelongsTo(tenantID uuid.UUID) bool {
	return r != nil && r.TenantID == tenantID
}

// Ordinals are the 1-based ranks used to build ticket numbers: the establishment
// among the tenant's active establishments, the register among its
// establishment's active registers, both ordered by id.
type Ordinals struct {
	Establishment int `json:"establishment"`
	Register      int `json:"register"`
}
