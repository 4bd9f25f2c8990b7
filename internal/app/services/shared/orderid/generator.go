package orderid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"qris-payment-service/internal/app/contracts"
	"strings"
	"time"
)

const (
	DefaultPrefix       = "ORDER"
	DefaultSuffixLength = 8
	base36Alphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

type generator struct {
	prefix       string
	suffixLength int
	now          func() time.Time
}

// NewGenerator returns an id generator producing PREFIX-<unix millis>-<suffix>.
// The suffix is drawn from crypto/rand so concurrent callers need no shared
// state.
func NewGenerator(prefix string, suffixLength int, now func() time.Time) contracts.OrderIDGenerator {
	prefix = normalizePrefix(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if suffixLength <= 0 {
		suffixLength = DefaultSuffixLength
	}
	if now == nil {
		now = time.Now
	}
	return &generator{
		prefix:       prefix,
		suffixLength: suffixLength,
		now:          now,
	}
}

// normalizePrefix keeps only [A-Z0-9] so every id matches [A-Za-z0-9-]+.
func normalizePrefix(prefix string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, strings.ToUpper(prefix))
}

func (g *generator) Generate() string {
	return fmt.Sprintf("%s-%d-%s", g.prefix, g.now().UnixMilli(), randomBase36(g.suffixLength))
}

func randomBase36(length int) string {
	alphabetSize := big.NewInt(int64(len(base36Alphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
		}
		b.WriteByte(base36Alphabet[n.Int64()])
	}
	return b.String()
}
