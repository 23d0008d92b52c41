package qrcodes

import (
	"errors"
	"math/rand"
)

const (
	shortLinkChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shortLinkLength = 8

	defaultMaxAttempts = 10
)

// ErrShortLinkExhausted is returned when no unused token was found within
// the attempt budget. The short_link UNIQUE constraint remains the final
// arbiter against races between the availability check and the insert.
var ErrShortLinkExhausted = errors.New("failed to generate unique short link")

type LinkAvailabilityChecker interface {
	ExistsByShortLink(token string) (bool, error)
}

// GenerateShortLink draws random 8-character alphanumeric tokens until one is
// unused, giving up after maxAttempts draws (a configurable bound rather than
// an unbounded loop, to preserve liveness if the token space gets crowded).
func GenerateShortLink(checker LinkAvailabilityChecker, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for i := 0; i < maxAttempts; i++ {
		token := randomToken(shortLinkLength)

		exists, err := checker.ExistsByShortLink(token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}

	return "", ErrShortLinkExhausted
}

func randomToken(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = shortLinkChars[rand.Intn(len(shortLinkChars))]
	}
	return string(b)
}
