// Package repository stores profiles and monitor configuration rows, either
// through the hosted rows API with the user's access token (row level security
// applies) or directly in PostgreSQL.
package repository

import (
	"context"
	"time"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/supabase"
)

// RowsClient is the part of the hosted backend client the REST repositories use.
type RowsClient interface {
	SelectSingle(ctx context.Context, token, table string, out interface{}, filters ...supabase.Filter) error
	Insert(ctx context.Context, token, table string, row interface{}, out interface{}) error
	Update(ctx context.Context, token, table string, values map[string]interface{}, filters ...supabase.Filter) error
}

var _ RowsClient = (*supabase.Client)(nil)

// withUpdatedAt copies fields and stamps updated_at.
func withUpdatedAt(fields map[string]interface{}, now time.Time) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[constants.ColumnUpdatedAt] = now.UTC()
	return out
}
