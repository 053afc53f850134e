package services

import (
	"context"
	"fmt"

	"fleetgov/internal/repositories"
)

// tenantCollections are the tenant-bearing tables included in every backup.
// The list doubles as a whitelist: Dump refuses anything outside it.
var tenantCollections = []string{
	"tenants",
	"licenses",
	"audit_logs",
	"trips",
	"vehicles",
	"staff",
}

// CollectionDumper produces the point-in-time export of one collection.
type CollectionDumper interface {
	Collections() []string
	Dump(ctx context.Context, collection string) ([]byte, error)
}

type pgDumper struct {
	db repositories.DB
}

func NewPgDumper(db repositories.DB) CollectionDumper {
	return &pgDumper{db: db}
}

func (d *pgDumper) Collections() []string {
	out := make([]string, len(tenantCollections))
	copy(out, tenantCollections)
	return out
}

func (d *pgDumper) Dump(ctx context.Context, collection string) ([]byte, error) {
	allowed := false
	for _, c := range tenantCollections {
		if c == collection {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("collection %q is not exportable", collection)
	}

	// Collection names come from the whitelist above, never from callers.
	query := fmt.Sprintf(`SELECT COALESCE(json_agg(t), '[]'::json)::text FROM %s t`, collection)

	var payload string
	if err := d.db.QueryRow(ctx, query).Scan(&payload); err != nil {
		return nil, fmt.Errorf("failed to dump %s: %w", collection, err)
	}
	return []byte(payload), nil
}
