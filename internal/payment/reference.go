package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const referenceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewReference returns a transaction reference of the form BLVCK_<unix-ms>_<random>.
func NewReference(now time.Time) string {
	var b strings.Builder
	size := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < 13; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			panic(fmt.Sprintf("payment: random source failed: %v", err))
		}
		b.WriteByte(referenceAlphabet[n.Int64()])
	}
	return strings.ToUpper(fmt.Sprintf("BLVCK_%d_%s", now.UnixMilli(), b.String()))
}
