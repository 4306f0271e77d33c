package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

const (
	// OrderNumberPrefix starts every order number.
	OrderNumberPrefix = "LP"

	suffixLength   = 5
	suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Largest multiple of 36 that fits in a byte; higher bytes are redrawn.
	maxUnbiasedByte = 252
)

// NumberGenerator mints order numbers of the form LP-<unix millis>-<5 base-36 chars>.
//
// Within one process a suffix is never handed out twice in the same millisecond.
// Uniqueness across processes is left to the storage constraint.
type NumberGenerator struct {
	mu     sync.Mutex
	now    func() time.Time
	random io.Reader

	millis int64
	used   map[string]struct{}
}

// NewNumberGenerator returns a generator backed by the wall clock and crypto/rand.
func NewNumberGenerator() *NumberGenerator {
	return NewNumberGeneratorWith(time.Now, rand.Reader)
}

// NewNumberGeneratorWith injects the clock and randomness source.
func NewNumberGeneratorWith(now func() time.Time, random io.Reader) *NumberGenerator {
	return &NumberGenerator{
		now:    now,
		random: random,
		used:   make(map[string]struct{}),
	}
}

// Next returns a new order number.
func (g *NumberGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.now().UnixMilli()
	if millis != g.millis {
		g.millis = millis
		g.used = make(map[string]struct{})
	}

	for {
		suffix, err := g.suffix()
		if err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		if _, taken := g.used[suffix]; taken {
			continue
		}
		g.used[suffix] = struct{}{}
		return OrderNumberPrefix + "-" + strconv.FormatInt(millis, 10) + "-" + suffix, nil
	}
}

func (g *NumberGenerator) suffix() (string, error) {
	out := make([]byte, 0, suffixLength)
	buf := make([]byte, suffixLength)

	for len(out) < suffixLength {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= maxUnbiasedByte {
				continue
			}
			out = append(out, suffixAlphabet[int(b)%len(suffixAlphabet)])
			if len(out) == suffixLength {
				break
			}
		}
	}
	return string(out), nil
}
