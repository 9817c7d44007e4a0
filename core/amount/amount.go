// Package amount provides checked signed 128-bit integer arithmetic for
// token amounts. The 128-bit domain matches the widest amount representation
// used by the asset contracts the ledger settles against; any operation whose
// result falls outside that domain fails with ErrOverflow instead of wrapping.
package amount

import (
	"errors"
	"fmt"
	"math/big"
)

// BpsDenominator is the fixed-point denominator for basis-point rates
// (10000 basis points = 100%).
const BpsDenominator = 10_000

var (
	// ErrOverflow is returned when a result leaves the signed 128-bit range.
	ErrOverflow = errors.New("amount overflow")

	// ErrInvalidAmount is returned when parsing a malformed amount string.
	ErrInvalidAmount = errors.New("invalid amount")
)

// i128 domain bounds: [-2^127, 2^127-1].
var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// Amount is an immutable signed 128-bit integer amount.
// The zero value is a valid zero amount. Methods never mutate the receiver;
// arithmetic returns fresh values, so amounts are safe to copy and share.
type Amount struct {
	v *big.Int
}

// New returns the Amount for the given int64 value.
func New(v int64) Amount {
	return Amount{v: big.NewInt(v)}
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// Parse parses a base-10 amount string.
// Returns ErrInvalidAmount on malformed input and ErrOverflow when the
// value is outside the signed 128-bit range.
func Parse(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !inRange(v) {
		return Amount{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return Amount{v: v}, nil
}

// MustParse is Parse that panics on error. For tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func inRange(v *big.Int) bool {
	return v.Cmp(minI128) >= 0 && v.Cmp(maxI128) <= 0
}

func (a Amount) val() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Add returns a+b, failing with ErrOverflow outside the 128-bit range.
func (a Amount) Add(b Amount) (Amount, error) {
	r := new(big.Int).Add(a.val(), b.val())
	if !inRange(r) {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	return Amount{v: r}, nil
}

// Sub returns a-b, failing with ErrOverflow outside the 128-bit range.
func (a Amount) Sub(b Amount) (Amount, error) {
	r := new(big.Int).Sub(a.val(), b.val())
	if !inRange(r) {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrOverflow, a, b)
	}
	return Amount{v: r}, nil
}

// MulBps returns a*bps/10000 with the division truncated toward zero.
// The intermediate product is exact, so only the scaled result is subject
// to the 128-bit range check.
func (a Amount) MulBps(bps uint32) (Amount, error) {
	r := new(big.Int).Mul(a.val(), big.NewInt(int64(bps)))
	// Quo truncates toward zero, matching the fee schedule's rounding policy.
	r.Quo(r, big.NewInt(BpsDenominator))
	if !inRange(r) {
		return Amount{}, fmt.Errorf("%w: %s * %d bps", ErrOverflow, a, bps)
	}
	return Amount{v: r}, nil
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.val().Cmp(b.val())
}

// Equal reports whether a and b are the same value.
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// Sign returns -1, 0 or +1 for negative, zero and positive amounts.
func (a Amount) Sign() int {
	return a.val().Sign()
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

// IsPositive reports whether the amount is strictly positive.
func (a Amount) IsPositive() bool {
	return a.Sign() > 0
}

// IsNegative reports whether the amount is strictly negative.
func (a Amount) IsNegative() bool {
	return a.Sign() < 0
}

// String returns the base-10 representation.
func (a Amount) String() string {
	return a.val().String()
}

// MarshalBinary encodes the amount as a sign byte followed by the
// big-endian magnitude. Used by the CBOR record codec.
func (a Amount) MarshalBinary() ([]byte, error) {
	v := a.val()
	var sign byte
	if v.Sign() < 0 {
		sign = 1
	}
	mag := new(big.Int).Abs(v).Bytes()
	out := make([]byte, 1+len(mag))
	out[0] = sign
	copy(out[1:], mag)
	return out, nil
}

// UnmarshalBinary decodes the MarshalBinary encoding.
func (a *Amount) UnmarshalBinary(data []byte) error {
	if len(data) < 1 || data[0] > 1 {
		return fmt.Errorf("%w: bad binary encoding", ErrInvalidAmount)
	}
	v := new(big.Int).SetBytes(data[1:])
	if data[0] == 1 {
		v.Neg(v)
	}
	if !inRange(v) {
		return fmt.Errorf("%w: binary value out of range", ErrOverflow)
	}
	a.v = v
	return nil
}
