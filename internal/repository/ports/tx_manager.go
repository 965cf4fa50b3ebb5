package ports

import "context"

// TxManager runs fn inside one database transaction carried by the context
// passed to fn. Repositories called with that context join the transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
