package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	numberPrefix   = "ORD"
	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength   = 5
)

// NewOrderNumber builds a human-readable order number from the submission
// time plus a random suffix. Uniqueness is best-effort; the database unique
// index is the real guard and creation retries on collision.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", numberPrefix, now.UnixMilli(), randomSuffix(suffixLength))
}

func randomSuffix(length int) string {
	max := big.NewInt(int64(len(suffixAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a time-derived index rather than panicking.
			n = big.NewInt(time.Now().UnixNano() % int64(len(suffixAlphabet)))
		}
		out[i] = suffixAlphabet[n.Int64()]
	}
	return string(out)
}
