package ports

import (
	"context"

	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD, con repositorios atados a esa tx.
// Commit si fn retorna nil; Rollback en cualquier otro caso.
// Los conflictos de concurrencia (timeout de lock, serialización) se devuelven como domain.ErrConcurrency.
type TxRunner interface {
	// Run usa el aislamiento por defecto (READ COMMITTED) con bloqueos de fila.
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
	// RunSerializable usa aislamiento SERIALIZABLE.
	RunSerializable(ctx context.Context, fn func(repos repository.Repos) error) error
}
