package repository

import (
	"context"
	"fmt"

	trmgorm "github.com/avito-tech/go-transaction-manager/drivers/gorm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"gorm.io/gorm"
)

// DB hands out the connection bound to the current transaction, if any
type DB struct {
	db     *gorm.DB
	getter *trmgorm.CtxGetter
}

func NewDB(db *gorm.DB) *DB {
	return &DB{
		db:     db,
		getter: trmgorm.DefaultCtxGetter,
	}
}

func (d *DB) Conn(ctx context.Context) *gorm.DB {
	return d.getter.DefaultTrOrDB(ctx, d.db).WithContext(ctx)
}

// Ping checks that the database answers
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type TransactionManager struct {
	manager *manager.Manager
}

func NewTransactionManager(db *gorm.DB) (*TransactionManager, error) {
	trManager, err := manager.New(trmgorm.NewDefaultFactory(db))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction manager: %w", err)
	}

	return &TransactionManager{manager: trManager}, nil
}

func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.manager.Do(ctx, fn)
}

// Pinger is implemented by stores that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}
