package unitofwork

import (
	"context"

	"author-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// AfterCommit queues fn to run once the transaction commits. Callbacks
	// are dropped on rollback.
	AfterCommit(fn func())
	// Savepoint runs fn inside a nested savepoint. A failing fn only rolls
	// back its own writes and its error is returned to the caller.
	Savepoint(name string, fn func() error) error

	RepositoryRepository() contract.RepositoryRepository
	ActivityRepository() contract.ActivityRepository
	ActivityStatusRepository() contract.ActivityStatusRepository
	ContentElementRepository() contract.ContentElementRepository
}
