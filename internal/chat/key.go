package chat

import (
	"fmt"
	"strings"
)

// KeySeparator joins the two participant ids of a conversation key. Ids
// containing it are rejected so that distinct pairs can never collide.
const KeySeparator = "_"

// DeriveKey maps two participant ids to the canonical key of their
// conversation. The key is order-independent: DeriveKey(a, b) and
// DeriveKey(b, a) return the same string. Self-addressed conversations are
// rejected.
func DeriveKey(a, b string) (string, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	if a == "" || b == "" {
		return "", fmt.Errorf("%w: participant id is empty", ErrValidation)
	}
	if a == b {
		return "", fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	if strings.Contains(a, KeySeparator) || strings.Contains(b, KeySeparator) {
		return "", fmt.Errorf("%w: participant id contains %q", ErrValidation, KeySeparator)
	}

	if b < a {
		a, b = b, a
	}
	return a + KeySeparator + b, nil
}
