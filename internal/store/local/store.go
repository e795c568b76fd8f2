// Package local implements the always-available local persistence backstop:
// a small key-value store holding the sealed collection blobs.
package local

import "context"

// Well-known blob keys. Values are opaque sealed tokens.
const (
	KeyInvoices = "cfdi_facturas"
	KeyUsers    = "cfdi_usuarios"
)

// Store is a synchronous key-value store scoped to the device profile.
type Store interface {
	// Get returns the value for key, or common.ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
