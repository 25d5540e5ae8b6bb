// Package idhash derives deterministic identifiers for stored entities.
package idhash

import (
	"crypto/md5"
	"encoding/hex"
)

// cardIDLen is the number of hex characters kept from the digest. Collisions
// are not checked; at the collection cap this is acceptable.
const cardIDLen = 10

// CardID computes a card id from its title: the first 10 hex characters of
// the MD5 digest. MD5 is used as a cheap stable hash here, not for security;
// existing documents were produced with it and the ids must keep matching.
func CardID(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])[:cardIDLen]
}
