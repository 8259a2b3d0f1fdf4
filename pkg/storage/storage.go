package storage

import "context"

// Provider encapsulates the operations required by go-blog repositories and
// the static generator's artifact writer. Implementations typically wrap a
// database handle or a filesystem root.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Config captures the runtime configuration for a storage provider. Detailed
// schema validation is handled by higher layers (site config validation).
type Config struct {
	Name     string         `json:"name,omitempty"`
	Driver   string         `json:"driver,omitempty"`
	DSN      string         `json:"dsn,omitempty"`
	ReadOnly bool           `json:"read_only,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}
