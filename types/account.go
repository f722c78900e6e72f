package types

import "strings"

// Account identifies a party that can own tokens or administer a collection.
// It is an opaque string: an EVM address, a bech32 address or any other
// identifier the caller's signing layer produces.
type Account string

// NewAccount trims surrounding whitespace. Hex addresses ("0x...") are
// lower-cased so that checksummed and plain spellings compare equal.
func NewAccount(s string) Account {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = strings.ToLower(s)
	}
	return Account(s)
}

// IsZero reports whether the account is empty.
func (a Account) IsZero() bool { return a == "" }

// String implements fmt.Stringer.
func (a Account) String() string { return string(a) }
