package ledger

import (
	"context"

	"github.com/meshpay/rewards/core/amount"
)

// Event is a notification published by a ledger operation. Publishing is
// fire-and-forget: sinks get no acknowledgment path and must not block.
// Within one operation, publish order equals call order.
type Event interface {
	EventName() string
}

// RewardRole names the party a reward transfer went to.
type RewardRole string

const (
	RoleBroadcaster RewardRole = "broadcaster"
	RoleRelayer     RewardRole = "relayer"
	RoleProtocol    RewardRole = "protocol"
)

// RewardEvent is published once per recipient by DistributeRewards.
type RewardEvent struct {
	PaymentID uint64
	Role      RewardRole
	Recipient AccountID
	Fee       amount.Amount
}

func (e RewardEvent) EventName() string {
	return "reward_" + string(e.Role)
}

// PaymentRecordedEvent is the single combined event published by
// RecordAndDistribute, carrying the full split for audit consumers.
type PaymentRecordedEvent struct {
	PaymentID      uint64
	Sender         AccountID
	Recipient      AccountID
	Broadcaster    AccountID
	Relayer        AccountID
	Protocol       AccountID
	GrossAmount    amount.Amount
	NetAmount      amount.Amount
	BroadcasterFee amount.Amount
	RelayerFee     amount.Amount
	ProtocolFee    amount.Amount
}

func (PaymentRecordedEvent) EventName() string {
	return "payment_recorded"
}

// EventSink receives ledger events.
type EventSink interface {
	Publish(ctx context.Context, event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(ctx context.Context, event Event) {}
