// Package ledgertest provides fake collaborators for exercising the ledger
// in tests: a programmable authorizer, a recording transfer service and a
// recording event sink.
package ledgertest

import (
	"context"
	"sync"

	"github.com/meshpay/rewards/core/amount"
	"github.com/meshpay/rewards/core/ledger"
)

// Authorizer approves every account unless Deny has been set for it.
type Authorizer struct {
	mu     sync.Mutex
	denied map[ledger.AccountID]error
}

func NewAuthorizer() *Authorizer {
	return &Authorizer{denied: make(map[ledger.AccountID]error)}
}

// Deny makes RequireAuth fail with err for the given account.
func (a *Authorizer) Deny(account ledger.AccountID, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.denied[account] = err
}

func (a *Authorizer) RequireAuth(ctx context.Context, account ledger.AccountID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err, ok := a.denied[account]; ok {
		return err
	}
	return nil
}

// Transfer is one recorded transfer call.
type Transfer struct {
	Token  ledger.TokenID
	From   ledger.AccountID
	To     ledger.AccountID
	Amount amount.Amount
}

// TransferService records every transfer in call order and can be
// programmed to fail from a given call index onward.
type TransferService struct {
	mu        sync.Mutex
	transfers []Transfer
	failAt    int
	failErr   error
}

func NewTransferService() *TransferService {
	return &TransferService{failAt: -1}
}

// FailAt makes the n-th transfer call (0-based) and all later calls fail
// with err.
func (s *TransferService) FailAt(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt = n
	s.failErr = err
}

func (s *TransferService) Transfer(ctx context.Context, token ledger.TokenID, from, to ledger.AccountID, amt amount.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAt >= 0 && len(s.transfers) >= s.failAt {
		return s.failErr
	}

	s.transfers = append(s.transfers, Transfer{
		Token:  token,
		From:   from,
		To:     to,
		Amount: amt,
	})
	return nil
}

// Transfers returns a copy of the recorded transfers in call order.
func (s *TransferService) Transfers() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transfer, len(s.transfers))
	copy(out, s.transfers)
	return out
}

// EventSink records published events in call order.
type EventSink struct {
	mu     sync.Mutex
	events []ledger.Event
}

func NewEventSink() *EventSink {
	return &EventSink{}
}

func (s *EventSink) Publish(ctx context.Context, event ledger.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of the published events in publish order.
func (s *EventSink) Events() []ledger.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Event, len(s.events))
	copy(out, s.events)
	return out
}
