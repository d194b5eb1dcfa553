package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/DRSN-tech/catalog-service/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// txRunner выполняет fn в транзакции; pgx.Tx доступна репозиториям через tr.TxFromCtx.
type txRunner struct {
	dbPool transaction.Transactional
	logger logger.Logger
}

func (r *txRunner) withinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, r.dbPool)
	if err != nil {
		return err
	}
	// Если произошла ошибка, транзакция откатывается
	defer func() {
		if err != nil && tx.IsActive() {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Warnf("transaction rollback failed: %v", rbErr)
			}
		}
	}()

	if err = fn(tr.WithTx(ctx, tx.Transaction())); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
