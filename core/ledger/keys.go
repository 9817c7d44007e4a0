package ledger

import "encoding/binary"

// Storage keys. The ledger's whole footprint in the keyed store is the
// protocol address, the payment counter, and one record per payment id.
var (
	keyProtocol     = []byte("protocol")
	keyPaymentCount = []byte("payment_count")

	paymentKeyPrefix = []byte("payment/")
)

// paymentKey returns the storage key for a payment id: the prefix followed
// by the id in 8-byte big-endian form.
func paymentKey(id uint64) []byte {
	key := make([]byte, len(paymentKeyPrefix)+8)
	copy(key, paymentKeyPrefix)
	binary.BigEndian.PutUint64(key[len(paymentKeyPrefix):], id)
	return key
}

// encodeCount encodes the payment counter as 8 big-endian bytes.
func encodeCount(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func decodeCount(raw []byte) uint64 {
	return binary.BigEndian.Uint64(raw)
}
