package ledger

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/meshpay/rewards/core/amount"
)

// checksumSize is the number of blake3 digest bytes prepended to every
// stored record.
const checksumSize = 16

// Payment is one payment's accounting state. The full split is persisted
// at creation time so a later distribution is replayable and auditable.
// Records are created exactly once and never deleted; only the Claimed
// flag and ClaimedAt ever change, and they change at most once.
type Payment struct {
	Sender      AccountID `cbor:"sender"`
	Recipient   AccountID `cbor:"recipient"`
	Broadcaster AccountID `cbor:"broadcaster"`
	Relayer     AccountID `cbor:"relayer"`

	GrossAmount    amount.Amount `cbor:"gross_amount"`
	NetAmount      amount.Amount `cbor:"net_amount"`
	BroadcasterFee amount.Amount `cbor:"broadcaster_fee"`
	RelayerFee     amount.Amount `cbor:"relayer_fee"`
	ProtocolFee    amount.Amount `cbor:"protocol_fee"`

	Claimed   bool      `cbor:"claimed"`
	CreatedAt time.Time `cbor:"created_at"`
	ClaimedAt time.Time `cbor:"claimed_at"`
}

// RFC3339Nano timestamps keep full precision across a round trip; the
// default unix-seconds mode would truncate.
var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// encodePayment serializes a record as a 16-byte blake3 checksum followed
// by the CBOR body.
func encodePayment(p Payment) ([]byte, error) {
	body, err := encMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment: %w", err)
	}

	sum := blake3.Sum256(body)
	out := make([]byte, checksumSize+len(body))
	copy(out, sum[:checksumSize])
	copy(out[checksumSize:], body)
	return out, nil
}

// decodePayment verifies the checksum envelope and decodes the CBOR body.
func decodePayment(value []byte) (Payment, error) {
	if len(value) < checksumSize {
		return Payment{}, fmt.Errorf("%w: record too short", ErrDataCorruption)
	}

	body := value[checksumSize:]
	sum := blake3.Sum256(body)
	for i := 0; i < checksumSize; i++ {
		if sum[i] != value[i] {
			return Payment{}, fmt.Errorf("%w: checksum mismatch", ErrDataCorruption)
		}
	}

	var p Payment
	if err := cbor.Unmarshal(body, &p); err != nil {
		return Payment{}, fmt.Errorf("%w: %v", ErrDataCorruption, err)
	}
	return p, nil
}
