package interfaces

import (
	"github.com/goliatone/go-blog/pkg/storage"
)

// StorageProvider re-exports the storage contract so repositories and the
// generator can depend on a single interfaces import.
type StorageProvider = storage.Provider

// Rows aliases storage.Rows.
type Rows = storage.Rows

// Result aliases storage.Result.
type Result = storage.Result

// Transaction aliases storage.Transaction.
type Transaction = storage.Transaction
