package contracts

import "context"

type CallbackArchive interface {
	Archive(ctx context.Context, merchantOrderID string, payload interface{}) (string, error)
}
