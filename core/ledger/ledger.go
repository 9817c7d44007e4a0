// Package ledger implements the fee-splitting payment ledger: a record of
// payment intents between senders and recipients, with the 1% relay fee
// split among broadcaster, relayer and protocol and paid out through an
// external transfer service.
//
// A Ledger is one independent instance; many can live in one process, each
// backed by its own keyed store. Every operation is a single serialized
// step: a mutex covers the whole call, so counter allocation and record
// writes never interleave between callers.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"

	"github.com/meshpay/rewards/core/amount"
	"github.com/meshpay/rewards/core/fees"
	"github.com/meshpay/rewards/metrics"
	"github.com/meshpay/rewards/storage/keyValueDb"
)

const defaultCacheSize = 1024

// PaymentParams carries the parties and gross amount of one payment.
type PaymentParams struct {
	Sender      AccountID
	Recipient   AccountID
	Broadcaster AccountID
	Relayer     AccountID
	Amount      amount.Amount
}

// Options configures a Ledger. Store, Auth and Transfers are required.
type Options struct {
	Store     keyValueDb.DB
	Auth      Authorizer
	Transfers TransferService

	// Events receives distribution notifications. Defaults to NopSink.
	Events EventSink

	// Archive, when set, receives a best-effort mirror of every record.
	Archive Archiver

	// Clock supplies record timestamps. Defaults to the real clock.
	Clock clockwork.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// CacheSize bounds the payment read cache. Defaults to 1024.
	CacheSize int
}

// Ledger is the stateful payment ledger component.
type Ledger struct {
	mu        sync.Mutex
	store     keyValueDb.DB
	auth      Authorizer
	transfers TransferService
	events    EventSink
	archive   Archiver
	clock     clockwork.Clock
	log       *slog.Logger
	cache     *lru.Cache[uint64, Payment]
}

// New assembles a Ledger from its collaborators. The backing store may
// already hold ledger state; New performs no reads or writes itself.
func New(opts Options) (*Ledger, error) {
	if opts.Store == nil {
		return nil, errors.New("ledger: store is required")
	}
	if opts.Auth == nil {
		return nil, errors.New("ledger: authorizer is required")
	}
	if opts.Transfers == nil {
		return nil, errors.New("ledger: transfer service is required")
	}

	events := opts.Events
	if events == nil {
		events = NopSink{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	cache, err := lru.New[uint64, Payment](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to create cache: %w", err)
	}

	return &Ledger{
		store:     opts.Store,
		auth:      opts.Auth,
		transfers: opts.Transfers,
		events:    events,
		archive:   opts.Archive,
		clock:     clock,
		log:       log,
		cache:     cache,
	}, nil
}

// Initialize sets the protocol fee recipient and zeroes the payment
// counter. One-shot: a second call fails with ErrAlreadyInitialized and
// leaves state untouched.
func (l *Ledger) Initialize(ctx context.Context, protocol AccountID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	exists, err := l.store.Has(ctx, keyProtocol)
	if err != nil {
		return fmt.Errorf("failed to check protocol key: %w", err)
	}
	if exists {
		return ErrAlreadyInitialized
	}

	err = l.store.Batch(ctx, []keyValueDb.BatchOperation{
		keyValueDb.Put(keyProtocol, []byte(protocol)),
		keyValueDb.Put(keyPaymentCount, encodeCount(0)),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}

	l.log.Info("ledger initialized", "protocol", protocol)
	return nil
}

// CreatePayment records a new pending payment on behalf of the sender.
// The full fee split is computed from the gross amount and bound to the
// record, fees implicitly withheld until a later DistributeRewards call.
// Returns the allocated payment id; ids are dense from 0 and never reused.
//
// Initialization is not required first: on a fresh store the counter
// starts from zero.
func (l *Ledger) CreatePayment(ctx context.Context, p PaymentParams) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireAuth(ctx, p.Sender); err != nil {
		return 0, err
	}

	split, err := fees.Calculate(p.Amount)
	if err != nil {
		return 0, err
	}

	id, err := l.readCount(ctx)
	if err != nil {
		return 0, err
	}

	payment := Payment{
		Sender:         p.Sender,
		Recipient:      p.Recipient,
		Broadcaster:    p.Broadcaster,
		Relayer:        p.Relayer,
		GrossAmount:    p.Amount,
		NetAmount:      split.Net,
		BroadcasterFee: split.BroadcasterFee,
		RelayerFee:     split.RelayerFee,
		ProtocolFee:    split.ProtocolFee,
		Claimed:        false,
		CreatedAt:      l.clock.Now().UTC(),
	}

	if err := l.commitPayment(ctx, id, payment); err != nil {
		return 0, err
	}

	metrics.PaymentsCreatedTotal.Inc()
	l.log.Info("payment created",
		"payment_id", id,
		"sender", p.Sender,
		"recipient", p.Recipient,
		"gross", p.Amount,
		"net", split.Net,
	)

	l.archiveRecord(ctx, id, payment)
	return id, nil
}

// DistributeRewards pays out the fee split of an existing payment. The
// payer funds three transfers, to the broadcaster, the relayer and the
// protocol, in that fixed order, and one reward event per recipient is
// published in the same order.
//
// The supplied gross amount must equal the amount bound at creation;
// anything else fails with ErrAmountMismatch. All transfers complete
// before any state is written: a transfer failure aborts the call with
// ErrTransferFailed and the record stays unclaimed.
func (l *Ledger) DistributeRewards(ctx context.Context, id uint64, gross amount.Amount, token TokenID, payer AccountID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fail := func(err error) error {
		metrics.DistributionsTotal.WithLabelValues("two_step", "error").Inc()
		return err
	}

	if err := l.requireAuth(ctx, payer); err != nil {
		return fail(err)
	}

	protocol, err := l.readProtocol(ctx)
	if err != nil {
		return fail(err)
	}

	payment, err := l.readPayment(ctx, id)
	if err != nil {
		return fail(err)
	}
	if payment.Claimed {
		return fail(fmt.Errorf("%w: payment %d", ErrAlreadyDistributed, id))
	}
	if !gross.Equal(payment.GrossAmount) {
		return fail(fmt.Errorf("%w: supplied %s, recorded %s", ErrAmountMismatch, gross, payment.GrossAmount))
	}

	// All transfers precede any state mutation, so a failure here leaves
	// the record unclaimed and the ledger exactly as it was.
	transfers := []struct {
		role RewardRole
		to   AccountID
		fee  amount.Amount
	}{
		{RoleBroadcaster, payment.Broadcaster, payment.BroadcasterFee},
		{RoleRelayer, payment.Relayer, payment.RelayerFee},
		{RoleProtocol, protocol, payment.ProtocolFee},
	}
	for _, tr := range transfers {
		if err := l.transfer(ctx, token, payer, tr.to, tr.fee); err != nil {
			return fail(err)
		}
	}

	payment.Claimed = true
	payment.ClaimedAt = l.clock.Now().UTC()

	value, err := encodePayment(payment)
	if err != nil {
		return fail(err)
	}
	if err := l.store.Write(ctx, paymentKey(id), value); err != nil {
		return fail(fmt.Errorf("failed to store payment %d: %w", id, err))
	}
	l.cache.Add(id, payment)

	for _, tr := range transfers {
		l.events.Publish(ctx, RewardEvent{
			PaymentID: id,
			Role:      tr.role,
			Recipient: tr.to,
			Fee:       tr.fee,
		})
	}

	metrics.DistributionsTotal.WithLabelValues("two_step", "ok").Inc()
	l.log.Info("rewards distributed",
		"payment_id", id,
		"payer", payer,
		"token", token,
		"broadcaster_fee", payment.BroadcasterFee,
		"relayer_fee", payment.RelayerFee,
		"protocol_fee", payment.ProtocolFee,
	)

	l.archiveClaim(ctx, id, payment.ClaimedAt)
	return nil
}

// RecordAndDistribute creates and settles a payment in one call. The
// relayer is the funding party: it pays the broadcaster and protocol
// shares and keeps its own share implicitly, so only two transfers are
// needed and zero-valued shares are skipped outright. One combined event
// carries the id, all parties and the full split.
//
// A transfer failure aborts the whole call: no record is written and no
// id is consumed.
func (l *Ledger) RecordAndDistribute(ctx context.Context, p PaymentParams, token TokenID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fail := func(err error) (uint64, error) {
		metrics.DistributionsTotal.WithLabelValues("single_call", "error").Inc()
		return 0, err
	}

	if err := l.requireAuth(ctx, p.Relayer); err != nil {
		return fail(err)
	}

	protocol, err := l.readProtocol(ctx)
	if err != nil {
		return fail(err)
	}

	split, err := fees.Calculate(p.Amount)
	if err != nil {
		return fail(err)
	}

	id, err := l.readCount(ctx)
	if err != nil {
		return fail(err)
	}

	// Transfers first. Zero-valued shares are skipped, not errors.
	if split.BroadcasterFee.IsPositive() {
		if err := l.transfer(ctx, token, p.Relayer, p.Broadcaster, split.BroadcasterFee); err != nil {
			return fail(err)
		}
	}
	if split.ProtocolFee.IsPositive() {
		if err := l.transfer(ctx, token, p.Relayer, protocol, split.ProtocolFee); err != nil {
			return fail(err)
		}
	}

	now := l.clock.Now().UTC()
	payment := Payment{
		Sender:         p.Sender,
		Recipient:      p.Recipient,
		Broadcaster:    p.Broadcaster,
		Relayer:        p.Relayer,
		GrossAmount:    p.Amount,
		NetAmount:      split.Net,
		BroadcasterFee: split.BroadcasterFee,
		RelayerFee:     split.RelayerFee,
		ProtocolFee:    split.ProtocolFee,
		Claimed:        true,
		CreatedAt:      now,
		ClaimedAt:      now,
	}

	if err := l.commitPayment(ctx, id, payment); err != nil {
		return fail(err)
	}

	l.events.Publish(ctx, PaymentRecordedEvent{
		PaymentID:      id,
		Sender:         p.Sender,
		Recipient:      p.Recipient,
		Broadcaster:    p.Broadcaster,
		Relayer:        p.Relayer,
		Protocol:       protocol,
		GrossAmount:    p.Amount,
		NetAmount:      split.Net,
		BroadcasterFee: split.BroadcasterFee,
		RelayerFee:     split.RelayerFee,
		ProtocolFee:    split.ProtocolFee,
	})

	metrics.PaymentsCreatedTotal.Inc()
	metrics.DistributionsTotal.WithLabelValues("single_call", "ok").Inc()
	l.log.Info("payment recorded and distributed",
		"payment_id", id,
		"relayer", p.Relayer,
		"token", token,
		"gross", p.Amount,
		"net", split.Net,
	)

	l.archiveRecord(ctx, id, payment)
	return id, nil
}

// GetPayment returns a copy of the payment record for id.
func (l *Ledger) GetPayment(ctx context.Context, id uint64) (Payment, error) {
	if p, ok := l.cache.Get(id); ok {
		metrics.PaymentReadsTotal.WithLabelValues("cache").Inc()
		return p, nil
	}

	value, err := l.store.Read(ctx, paymentKey(id))
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		metrics.PaymentReadsTotal.WithLabelValues("miss").Inc()
		return Payment{}, fmt.Errorf("%w: id %d", ErrPaymentNotFound, id)
	}
	if err != nil {
		return Payment{}, fmt.Errorf("failed to read payment %d: %w", id, err)
	}

	p, err := decodePayment(value)
	if err != nil {
		return Payment{}, fmt.Errorf("payment %d: %w", id, err)
	}

	l.cache.Add(id, p)
	metrics.PaymentReadsTotal.WithLabelValues("store").Inc()
	return p, nil
}

// PaymentCount returns the number of payments ever created: the next free
// id. Zero on a fresh ledger.
func (l *Ledger) PaymentCount(ctx context.Context) (uint64, error) {
	return l.readCount(ctx)
}

func (l *Ledger) requireAuth(ctx context.Context, account AccountID) error {
	if err := l.auth.RequireAuth(ctx, account); err != nil {
		return fmt.Errorf("%w: account %s: %w", ErrNotAuthorized, account, err)
	}
	return nil
}

func (l *Ledger) transfer(ctx context.Context, token TokenID, from, to AccountID, amt amount.Amount) error {
	if err := l.transfers.Transfer(ctx, token, from, to, amt); err != nil {
		metrics.TransferFailuresTotal.Inc()
		return fmt.Errorf("%w: %s -> %s (%s): %w", ErrTransferFailed, from, to, amt, err)
	}
	return nil
}

// commitPayment writes the record and the bumped counter in one atomic
// batch, then caches the record.
func (l *Ledger) commitPayment(ctx context.Context, id uint64, p Payment) error {
	value, err := encodePayment(p)
	if err != nil {
		return err
	}

	err = l.store.Batch(ctx, []keyValueDb.BatchOperation{
		keyValueDb.Put(paymentKey(id), value),
		keyValueDb.Put(keyPaymentCount, encodeCount(id+1)),
	})
	if err != nil {
		return fmt.Errorf("failed to store payment %d: %w", id, err)
	}

	l.cache.Add(id, p)
	return nil
}

func (l *Ledger) readCount(ctx context.Context) (uint64, error) {
	raw, err := l.store.Read(ctx, keyPaymentCount)
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read payment count: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: payment count has %d bytes", ErrDataCorruption, len(raw))
	}
	return decodeCount(raw), nil
}

func (l *Ledger) readProtocol(ctx context.Context) (AccountID, error) {
	raw, err := l.store.Read(ctx, keyProtocol)
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return "", ErrProtocolNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("failed to read protocol address: %w", err)
	}
	return AccountID(raw), nil
}

func (l *Ledger) readPayment(ctx context.Context, id uint64) (Payment, error) {
	if p, ok := l.cache.Get(id); ok {
		return p, nil
	}

	value, err := l.store.Read(ctx, paymentKey(id))
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return Payment{}, fmt.Errorf("%w: id %d", ErrPaymentNotFound, id)
	}
	if err != nil {
		return Payment{}, fmt.Errorf("failed to read payment %d: %w", id, err)
	}
	return decodePayment(value)
}

// Archive writes are best effort: a failed mirror is logged, never fatal.
func (l *Ledger) archiveRecord(ctx context.Context, id uint64, p Payment) {
	if l.archive == nil {
		return
	}
	if err := l.archive.RecordPayment(ctx, id, p); err != nil {
		l.log.Warn("failed to archive payment", "payment_id", id, "error", err)
	}
}

func (l *Ledger) archiveClaim(ctx context.Context, id uint64, at time.Time) {
	if l.archive == nil {
		return
	}
	if err := l.archive.MarkClaimed(ctx, id, at); err != nil {
		l.log.Warn("failed to archive claim", "payment_id", id, "error", err)
	}
}
