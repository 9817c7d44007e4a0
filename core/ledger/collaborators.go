package ledger

import (
	"context"
	"time"

	"github.com/meshpay/rewards/core/amount"
)

// AccountID is an opaque account identifier. The ledger never interprets
// it; identity proof and balance tracking belong to the collaborators.
type AccountID string

// TokenID identifies the token/asset contract a distribution settles in.
type TokenID string

// Authorizer asserts that the current call was authorized by the given
// account. The host environment decides what "authorized" means; the
// ledger only requires a yes/no answer before any guarded operation.
type Authorizer interface {
	RequireAuth(ctx context.Context, account AccountID) error
}

// TransferService moves value between accounts. A transfer fails as a
// unit if the source lacks sufficient balance or authorization.
type TransferService interface {
	Transfer(ctx context.Context, token TokenID, from, to AccountID, amt amount.Amount) error
}

// Archiver mirrors payment records into an audit store. Archive failures
// must never fail a ledger operation; implementations are expected to be
// best-effort and the ledger only logs their errors.
type Archiver interface {
	RecordPayment(ctx context.Context, id uint64, p Payment) error
	MarkClaimed(ctx context.Context, id uint64, at time.Time) error
}
