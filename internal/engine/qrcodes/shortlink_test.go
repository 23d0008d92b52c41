package qrcodes

import (
	"errors"
	"strings"
	"testing"
)

type MockChecker struct {
	taken map[string]bool
	fail  bool
	calls int
}

func (m *MockChecker) ExistsByShortLink(token string) (bool, error) {
	m.calls++
	if m.fail {
		return false, errors.New("db error")
	}
	if m.taken == nil {
		return false, nil
	}
	return m.taken[token], nil
}

type alwaysTaken struct{ calls int }

func (a *alwaysTaken) ExistsByShortLink(token string) (bool, error) {
	a.calls++
	return true, nil
}

func TestGenerateShortLink(t *testing.T) {
	checker := &MockChecker{}

	token, err := GenerateShortLink(checker, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != shortLinkLength {
		t.Errorf("expected length %d, got %d", shortLinkLength, len(token))
	}
	for _, c := range token {
		if !strings.ContainsRune(shortLinkChars, c) {
			t.Errorf("token %q contains invalid character %q", token, c)
		}
	}
}

func TestGenerateShortLink_Exhausted(t *testing.T) {
	checker := &alwaysTaken{}

	_, err := GenerateShortLink(checker, 5)
	if !errors.Is(err, ErrShortLinkExhausted) {
		t.Errorf("expected ErrShortLinkExhausted, got %v", err)
	}
	if checker.calls != 5 {
		t.Errorf("expected exactly 5 attempts, got %d", checker.calls)
	}
}

func TestGenerateShortLink_CheckerError(t *testing.T) {
	checker := &MockChecker{fail: true}

	_, err := GenerateShortLink(checker, 10)
	if err == nil {
		t.Error("expected error from checker, got nil")
	}
	if checker.calls != 1 {
		t.Errorf("expected generation to stop on first checker error, got %d calls", checker.calls)
	}
}

func TestGenerateShortLink_Uniqueness(t *testing.T) {
	checker := &MockChecker{taken: map[string]bool{}}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		token, err := GenerateShortLink(checker, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[token] {
			t.Fatalf("token %q generated twice", token)
		}
		seen[token] = true
		checker.taken[token] = true
	}
}
