// Package tr передает транзакцию pgx через контекст от usecase к репозиториям.
package tr

import (
	"context"

	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// WithTx кладет транзакцию в контекст. Принимает any: менеджер транзакций отдает ее без типа.
func WithTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает pgx.Tx из контекста.
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}
