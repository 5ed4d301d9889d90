package identity

import (
	"crypto/sha1" //nolint:gosec // OIDs must stay compatible with already issued identifiers
	"encoding/hex"
	"errors"
)

// OIDPrefix starts every generated OID.
const OIDPrefix = "MPASSOID."

var (
	// ErrEmptySalt is returned when an OID generator is built without a salt.
	// Without a salt two sources sharing a local username would collide.
	ErrEmptySalt = errors.New("oid salt can not be empty")

	// ErrMaxLengthTooShort is returned when the truncation length would cut into the prefix.
	ErrMaxLengthTooShort = errors.New("oid max length must be longer than the oid prefix")
)

// OIDGenerator derives stable identifiers from source local usernames.
//
// OID = OIDPrefix + hex(sha1(Salt + username)), cut to MaxLength when
// MaxLength is positive. Truncation raises the collision probability and
// must stay fixed for a source once identifiers have been issued.
type OIDGenerator struct {
	salt      string
	maxLength int
}

// NewOIDGenerator validates the salt and length and returns a generator.
// A maxLength of 0 disables truncation.
func NewOIDGenerator(salt string, maxLength int) (OIDGenerator, error) {
	if salt == "" {
		return OIDGenerator{}, ErrEmptySalt
	}

	if maxLength < 0 || (maxLength > 0 && maxLength <= len(OIDPrefix)) {
		return OIDGenerator{}, ErrMaxLengthTooShort
	}

	return OIDGenerator{salt: salt, maxLength: maxLength}, nil
}

// OID returns the identifier for username.
func (g OIDGenerator) OID(username string) string {
	sum := sha1.Sum([]byte(g.salt + username)) //nolint:gosec

	oid := OIDPrefix + hex.EncodeToString(sum[:])
	if g.maxLength > 0 && len(oid) > g.maxLength {
		oid = oid[:g.maxLength]
	}

	return oid
}

// Salt returns the namespace salt.
func (g OIDGenerator) Salt() string {
	return g.salt
}
