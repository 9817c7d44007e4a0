package amount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshpay/rewards/core/amount"
)

func TestParse(t *testing.T) {
	t.Run("Simple", func(t *testing.T) {
		a, err := amount.Parse("12345")
		require.NoError(t, err)
		assert.Equal(t, "12345", a.String())
	})

	t.Run("Negative", func(t *testing.T) {
		a, err := amount.Parse("-42")
		require.NoError(t, err)
		assert.True(t, a.IsNegative())
	})

	t.Run("Bounds", func(t *testing.T) {
		maxI128 := "170141183460469231731687303715884105727"
		minI128 := "-170141183460469231731687303715884105728"

		_, err := amount.Parse(maxI128)
		require.NoError(t, err)
		_, err = amount.Parse(minI128)
		require.NoError(t, err)

		_, err = amount.Parse("170141183460469231731687303715884105728")
		require.ErrorIs(t, err, amount.ErrOverflow)
		_, err = amount.Parse("-170141183460469231731687303715884105729")
		require.ErrorIs(t, err, amount.ErrOverflow)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := amount.Parse("12x")
		require.ErrorIs(t, err, amount.ErrInvalidAmount)
		_, err = amount.Parse("")
		require.ErrorIs(t, err, amount.ErrInvalidAmount)
	})
}

func TestArithmetic(t *testing.T) {
	t.Run("AddSub", func(t *testing.T) {
		a := amount.New(100)
		b := amount.New(42)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "142", sum.String())

		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.Equal(t, "58", diff.String())
	})

	t.Run("AddOverflow", func(t *testing.T) {
		max := amount.MustParse("170141183460469231731687303715884105727")
		_, err := max.Add(amount.New(1))
		require.ErrorIs(t, err, amount.ErrOverflow)
	})

	t.Run("SubOverflow", func(t *testing.T) {
		min := amount.MustParse("-170141183460469231731687303715884105728")
		_, err := min.Sub(amount.New(1))
		require.ErrorIs(t, err, amount.ErrOverflow)
	})

	t.Run("ZeroValue", func(t *testing.T) {
		var zero amount.Amount
		assert.True(t, zero.IsZero())
		assert.Equal(t, "0", zero.String())

		sum, err := zero.Add(amount.New(7))
		require.NoError(t, err)
		assert.Equal(t, "7", sum.String())
	})
}

func TestMulBps(t *testing.T) {
	t.Run("Basic", func(t *testing.T) {
		a := amount.New(10_000)
		fee, err := a.MulBps(50)
		require.NoError(t, err)
		assert.Equal(t, "50", fee.String())
	})

	t.Run("TruncatesTowardZero", func(t *testing.T) {
		// 1 * 50 / 10000 truncates to 0
		fee, err := amount.New(1).MulBps(50)
		require.NoError(t, err)
		assert.True(t, fee.IsZero())

		// Negative values truncate toward zero as well, not toward -inf.
		fee, err = amount.New(-199).MulBps(100)
		require.NoError(t, err)
		assert.Equal(t, "-1", fee.String())
	})

	t.Run("LargeInput", func(t *testing.T) {
		// The intermediate product exceeds 128 bits but the scaled
		// result stays in range.
		max := amount.MustParse("170141183460469231731687303715884105727")
		fee, err := max.MulBps(100)
		require.NoError(t, err)
		assert.Equal(t, "1701411834604692317316873037158841057", fee.String())
	})
}

func TestCompare(t *testing.T) {
	a := amount.New(5)
	b := amount.New(9)

	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.True(t, a.Equal(amount.New(5)))
	assert.True(t, amount.New(3).IsPositive())
	assert.True(t, amount.New(-3).IsNegative())
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, s := range []string{
		"0",
		"1",
		"-1",
		"9900",
		"170141183460469231731687303715884105727",
		"-170141183460469231731687303715884105728",
	} {
		a := amount.MustParse(s)
		data, err := a.MarshalBinary()
		require.NoError(t, err)

		var back amount.Amount
		require.NoError(t, back.UnmarshalBinary(data))
		assert.True(t, a.Equal(back), "round trip of %s", s)
	}
}

func TestUnmarshalBinaryRejectsGarbage(t *testing.T) {
	var a amount.Amount
	require.Error(t, a.UnmarshalBinary(nil))
	require.Error(t, a.UnmarshalBinary([]byte{2, 0}))
}
