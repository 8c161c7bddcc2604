package unitofwork

import (
	"context"
	"fmt"

	"author-be/internal/repository/contract"
	"author-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db          *gorm.DB
	tx          *gorm.DB
	afterCommit []func()
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	callbacks := u.afterCommit
	u.afterCommit = nil
	if err != nil {
		return err
	}
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	u.afterCommit = nil
	return err
}

func (u *UnitOfWorkImpl) AfterCommit(fn func()) {
	if u.tx == nil {
		fn()
		return
	}
	u.afterCommit = append(u.afterCommit, fn)
}

func (u *UnitOfWorkImpl) Savepoint(name string, fn func() error) error {
	if u.tx == nil {
		return fn()
	}
	if err := u.tx.SavePoint(name).Error; err != nil {
		return err
	}
	queued := len(u.afterCommit)
	if err := fn(); err != nil {
		u.afterCommit = u.afterCommit[:queued]
		if rbErr := u.tx.RollbackTo(name).Error; rbErr != nil {
			return fmt.Errorf("%w (rollback to %s: %v)", err, name, rbErr)
		}
		return err
	}
	return nil
}

// Repository Accessors

func (u *UnitOfWorkImpl) RepositoryRepository() contract.RepositoryRepository {
	return implementation.NewRepositoryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ActivityRepository() contract.ActivityRepository {
	return implementation.NewActivityRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ActivityStatusRepository() contract.ActivityStatusRepository {
	return implementation.NewActivityStatusRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ContentElementRepository() contract.ContentElementRepository {
	return implementation.NewContentElementRepository(u.getDB())
}
