// Package archive mirrors payment records into a relational database for
// offline audit. The keyed store remains the source of truth; the archive
// is best-effort and ledger operations never depend on it succeeding.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/meshpay/rewards/core/amount"
	"github.com/meshpay/rewards/core/ledger"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrUnknownDriver   = errors.New("unknown archive driver")
	ErrPaymentNotFound = errors.New("payment not found in archive")
)

// Config selects the archive database.
type Config struct {
	// Driver is sqlite or postgres.
	Driver string

	// Path is the sqlite database file; ":memory:" gives an in-process
	// archive, useful in tests.
	Path string

	// ConnString is the postgres connection string.
	ConnString string
}

// Archive is a relational mirror of payment records.
type Archive struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and ensures the schema exists.
func Open(ctx context.Context, cfg Config) (*Archive, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", cfg.Path)
	case DriverPostgres:
		db, err = sql.Open("postgres", cfg.ConnString)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping archive database: %w", err)
	}

	a := &Archive{db: db, driver: cfg.Driver}
	if err := a.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return a, nil
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS payments (
	payment_id      BIGINT PRIMARY KEY,
	sender          TEXT NOT NULL,
	recipient       TEXT NOT NULL,
	broadcaster     TEXT NOT NULL,
	relayer         TEXT NOT NULL,
	gross_amount    TEXT NOT NULL,
	net_amount      TEXT NOT NULL,
	broadcaster_fee TEXT NOT NULL,
	relayer_fee     TEXT NOT NULL,
	protocol_fee    TEXT NOT NULL,
	claimed         INTEGER NOT NULL,
	created_at      TEXT NOT NULL,
	claimed_at      TEXT
)`
	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// rebind converts ?-style placeholders to the $n form postgres expects.
func (a *Archive) rebind(query string) string {
	if a.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RecordPayment inserts (or replaces) the archived copy of a record.
func (a *Archive) RecordPayment(ctx context.Context, id uint64, p ledger.Payment) error {
	var claimed int
	var claimedAt any
	if p.Claimed {
		claimed = 1
		claimedAt = p.ClaimedAt.UTC().Format(time.RFC3339Nano)
	}

	// Replace-on-conflict keeps re-archiving idempotent.
	query := a.rebind(`
INSERT INTO payments (
	payment_id, sender, recipient, broadcaster, relayer,
	gross_amount, net_amount, broadcaster_fee, relayer_fee, protocol_fee,
	claimed, created_at, claimed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (payment_id) DO UPDATE SET claimed = excluded.claimed, claimed_at = excluded.claimed_at`)

	_, err := a.db.ExecContext(ctx, query,
		int64(id),
		string(p.Sender), string(p.Recipient), string(p.Broadcaster), string(p.Relayer),
		p.GrossAmount.String(), p.NetAmount.String(),
		p.BroadcasterFee.String(), p.RelayerFee.String(), p.ProtocolFee.String(),
		claimed,
		p.CreatedAt.UTC().Format(time.RFC3339Nano),
		claimedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive payment %d: %w", id, err)
	}
	return nil
}

// MarkClaimed flips the archived record to claimed.
func (a *Archive) MarkClaimed(ctx context.Context, id uint64, at time.Time) error {
	query := a.rebind(`UPDATE payments SET claimed = 1, claimed_at = ? WHERE payment_id = ?`)
	res, err := a.db.ExecContext(ctx, query, at.UTC().Format(time.RFC3339Nano), int64(id))
	if err != nil {
		return fmt.Errorf("failed to mark payment %d claimed: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrPaymentNotFound, id)
	}
	return nil
}

// Payment reads one archived record back.
func (a *Archive) Payment(ctx context.Context, id uint64) (ledger.Payment, error) {
	query := a.rebind(`
SELECT sender, recipient, broadcaster, relayer,
	gross_amount, net_amount, broadcaster_fee, relayer_fee, protocol_fee,
	claimed, created_at, claimed_at
FROM payments WHERE payment_id = ?`)

	var (
		p                                                   ledger.Payment
		sender, recipient, broadcaster, relayer             string
		gross, net, broadcasterFee, relayerFee, protocolFee string
		claimed                                             int
		createdAt                                           string
		claimedAt                                           sql.NullString
	)
	err := a.db.QueryRowContext(ctx, query, int64(id)).Scan(
		&sender, &recipient, &broadcaster, &relayer,
		&gross, &net, &broadcasterFee, &relayerFee, &protocolFee,
		&claimed, &createdAt, &claimedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Payment{}, fmt.Errorf("%w: id %d", ErrPaymentNotFound, id)
	}
	if err != nil {
		return ledger.Payment{}, fmt.Errorf("failed to read archived payment %d: %w", id, err)
	}

	p.Sender = ledger.AccountID(sender)
	p.Recipient = ledger.AccountID(recipient)
	p.Broadcaster = ledger.AccountID(broadcaster)
	p.Relayer = ledger.AccountID(relayer)
	p.Claimed = claimed != 0

	for _, field := range []struct {
		dst *amount.Amount
		src string
	}{
		{&p.GrossAmount, gross},
		{&p.NetAmount, net},
		{&p.BroadcasterFee, broadcasterFee},
		{&p.RelayerFee, relayerFee},
		{&p.ProtocolFee, protocolFee},
	} {
		v, err := amount.Parse(field.src)
		if err != nil {
			return ledger.Payment{}, fmt.Errorf("archived payment %d: %w", id, err)
		}
		*field.dst = v
	}

	p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return ledger.Payment{}, fmt.Errorf("archived payment %d: bad created_at: %w", id, err)
	}
	if claimedAt.Valid {
		p.ClaimedAt, err = time.Parse(time.RFC3339Nano, claimedAt.String)
		if err != nil {
			return ledger.Payment{}, fmt.Errorf("archived payment %d: bad claimed_at: %w", id, err)
		}
	}
	return p, nil
}

// Count returns the number of archived payments.
func (a *Archive) Count(ctx context.Context) (uint64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count archived payments: %w", err)
	}
	return uint64(n), nil
}
