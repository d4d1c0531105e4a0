package domain

import (
	"testing"
)

// FuzzParsePoolID tests that parsing never panics on arbitrary input and
// always returns either a positive pool id or an error.
func FuzzParsePoolID(f *testing.F) {
	f.Add("")
	f.Add("1")
	f.Add("8")
	f.Add("-1")
	f.Add("0")
	f.Add("999999999999999999999999")
	f.Add("not-a-number")
	f.Add("'; DROP TABLE pools;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		pool, err := ParsePoolID(input)
		if err == nil {
			if pool <= 0 {
				t.Errorf("parse accepted non-positive pool id %d", pool)
			}
			roundTrip, err2 := ParsePoolID(pool.String())
			if err2 != nil {
				t.Errorf("valid pool id failed round-trip: %v", err2)
			}
			if roundTrip != pool {
				t.Error("round-trip changed pool id value")
			}
		}
	})
}

// FuzzParseIdentity verifies the only invariant is non-emptiness and that
// accepted values round-trip unchanged.
func FuzzParseIdentity(f *testing.F) {
	f.Add("")
	f.Add("wallet-1")
	f.Add("wallet:0xdeadbeef")
	f.Add(string([]byte{0xff, 0xfe}))

	f.Fuzz(func(t *testing.T, input string) {
		identity, err := ParseIdentity(input)
		if (err == nil) == (input == "") {
			t.Errorf("empty check mismatch for %q", input)
		}
		if err == nil && identity.String() != input {
			t.Error("identity did not round-trip")
		}
	})
}
