package fees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshpay/rewards/core/amount"
	"github.com/meshpay/rewards/core/fees"
)

func TestSchedule(t *testing.T) {
	assert.Equal(t, uint32(100), fees.TotalFeeBps)
}

func TestCalculate(t *testing.T) {
	t.Run("TenThousand", func(t *testing.T) {
		b, err := fees.Calculate(amount.New(10_000))
		require.NoError(t, err)

		assert.Equal(t, "9900", b.Net.String())
		assert.Equal(t, "50", b.BroadcasterFee.String())
		assert.Equal(t, "10", b.RelayerFee.String())
		assert.Equal(t, "40", b.ProtocolFee.String())
	})

	t.Run("SubUnitTruncatesToZero", func(t *testing.T) {
		b, err := fees.Calculate(amount.New(1))
		require.NoError(t, err)

		assert.Equal(t, "1", b.Net.String())
		assert.True(t, b.BroadcasterFee.IsZero())
		assert.True(t, b.RelayerFee.IsZero())
		assert.True(t, b.ProtocolFee.IsZero())
	})

	t.Run("Zero", func(t *testing.T) {
		b, err := fees.Calculate(amount.Zero())
		require.NoError(t, err)
		assert.True(t, b.Net.IsZero())
	})

	t.Run("NegativeRejected", func(t *testing.T) {
		_, err := fees.Calculate(amount.New(-1))
		require.ErrorIs(t, err, fees.ErrInvalidAmount)
	})

	t.Run("Deterministic", func(t *testing.T) {
		gross := amount.New(123_456_789)
		first, err := fees.Calculate(gross)
		require.NoError(t, err)
		second, err := fees.Calculate(gross)
		require.NoError(t, err)

		assert.True(t, first.Net.Equal(second.Net))
		assert.True(t, first.BroadcasterFee.Equal(second.BroadcasterFee))
		assert.True(t, first.RelayerFee.Equal(second.RelayerFee))
		assert.True(t, first.ProtocolFee.Equal(second.ProtocolFee))
	})
}

// Conservation: net + fees == gross for a spread of amounts, including ones
// where per-component truncation differs from truncating the combined rate.
func TestCalculateConservation(t *testing.T) {
	cases := []string{
		"0",
		"1",
		"99",
		"10000",
		"10001",
		"10199", // independent truncation loses 2 units vs the combined rate
		"999999999999",
		"170141183460469231731687303715884105727", // max i128
	}

	for _, s := range cases {
		gross := amount.MustParse(s)
		b, err := fees.Calculate(gross)
		require.NoError(t, err, "gross %s", s)

		sum, err := b.Net.Add(b.BroadcasterFee)
		require.NoError(t, err)
		sum, err = sum.Add(b.RelayerFee)
		require.NoError(t, err)
		sum, err = sum.Add(b.ProtocolFee)
		require.NoError(t, err)

		assert.True(t, sum.Equal(gross), "conservation broken for gross %s: got %s", s, sum)
	}
}

// The fees must come from three independent truncating computations, not
// from one combined 1% computation.
func TestCalculateIndependentTruncation(t *testing.T) {
	// 10199: combined 1% = 101, but 50bps->50, 10bps->10, 40bps->40 sums to 100.
	b, err := fees.Calculate(amount.New(10_199))
	require.NoError(t, err)

	assert.Equal(t, "50", b.BroadcasterFee.String())
	assert.Equal(t, "10", b.RelayerFee.String())
	assert.Equal(t, "40", b.ProtocolFee.String())
	assert.Equal(t, "10099", b.Net.String())
}
