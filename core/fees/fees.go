// Package fees implements the relay reward fee schedule: a fixed 1% of the
// gross payment amount, split between the broadcaster that first relayed the
// payment, the relayer that submitted it for settlement, and the protocol
// operator.
package fees

import (
	"errors"
	"fmt"

	"github.com/meshpay/rewards/core/amount"
)

// Fee schedule in basis points (10000 = 100%). Total 1%.
const (
	BroadcasterFeeBps uint32 = 50 // 0.5% to the first relay peer
	RelayerFeeBps     uint32 = 10 // 0.1% to the settlement submitter
	ProtocolFeeBps    uint32 = 40 // 0.4% to the protocol operator
	TotalFeeBps       uint32 = BroadcasterFeeBps + RelayerFeeBps + ProtocolFeeBps
)

// ErrInvalidAmount is returned when the gross amount is negative.
var ErrInvalidAmount = errors.New("gross amount must not be negative")

// Breakdown is the 4-way split of a gross amount. The components always
// sum exactly to the gross amount they were computed from.
type Breakdown struct {
	Net            amount.Amount
	BroadcasterFee amount.Amount
	RelayerFee     amount.Amount
	ProtocolFee    amount.Amount
}

// Calculate splits gross into net plus the three fee components.
//
// Each fee is computed independently as gross*bps/10000 with truncating
// division. The independent computations can undershoot a single combined
// 100-bps computation by up to 2 minimal units on amounts that are not a
// multiple of 10000; the net amount is always derived by subtraction so the
// components sum to gross exactly regardless.
//
// Negative gross amounts are rejected with ErrInvalidAmount. Pure and
// deterministic; safe to call any number of times.
func Calculate(gross amount.Amount) (Breakdown, error) {
	if gross.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: %s", ErrInvalidAmount, gross)
	}

	broadcasterFee, err := gross.MulBps(BroadcasterFeeBps)
	if err != nil {
		return Breakdown{}, err
	}
	relayerFee, err := gross.MulBps(RelayerFeeBps)
	if err != nil {
		return Breakdown{}, err
	}
	protocolFee, err := gross.MulBps(ProtocolFeeBps)
	if err != nil {
		return Breakdown{}, err
	}

	net, err := gross.Sub(broadcasterFee)
	if err != nil {
		return Breakdown{}, err
	}
	net, err = net.Sub(relayerFee)
	if err != nil {
		return Breakdown{}, err
	}
	net, err = net.Sub(protocolFee)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Net:            net,
		BroadcasterFee: broadcasterFee,
		RelayerFee:     relayerFee,
		ProtocolFee:    protocolFee,
	}, nil
}
