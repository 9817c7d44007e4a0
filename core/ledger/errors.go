package ledger

import "errors"

var (
	// ErrAlreadyInitialized is returned when Initialize is called a second
	// time on the same ledger. Initialization is one-shot; there is no
	// update path for the protocol address.
	ErrAlreadyInitialized = errors.New("ledger already initialized")

	// ErrProtocolNotConfigured is returned by distribution operations
	// before Initialize has set the protocol fee recipient.
	ErrProtocolNotConfigured = errors.New("protocol address not configured")

	// ErrPaymentNotFound is returned when a payment id has never been
	// allocated.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrNotAuthorized is returned when the identity collaborator rejects
	// the calling account.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrTransferFailed is returned when the value-transfer collaborator
	// fails. No ledger state has been mutated when this is returned.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrAlreadyDistributed is returned when distributing a payment whose
	// rewards were already paid out. The claimed flag flips at most once.
	ErrAlreadyDistributed = errors.New("rewards already distributed")

	// ErrAmountMismatch is returned when the gross amount supplied at
	// distribution time differs from the amount bound at creation.
	ErrAmountMismatch = errors.New("gross amount does not match recorded payment")

	// ErrDataCorruption is returned when a stored record fails checksum
	// or shape validation on read.
	ErrDataCorruption = errors.New("stored record corrupted")
)
