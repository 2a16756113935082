package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

type IdentityKind string

const (
	IdentityKindUser      IdentityKind = "user"
	IdentityKindAnonymous IdentityKind = "anonymous"
)

// Identity is the owner of a cart: an authenticated user, or an anonymous visitor
// holding a per-channel token. It is resolved once per request and passed explicitly.
type Identity struct {
	Kind   IdentityKind
	UserID uuid.UUID
	Token  string
}

func UserIdentity(userID uuid.UUID) Identity {
	return Identity{Kind: IdentityKindUser, UserID: userID}
}

func AnonymousIdentity(token string) Identity {
	return Identity{Kind: IdentityKindAnonymous, Token: token}
}

func (i Identity) IsAnonymous() bool {
	return i.Kind != IdentityKindUser
}

// HasKey is false only for an anonymous visitor who has not been issued a token yet.
func (i Identity) HasKey() bool {
	if i.IsAnonymous() {
		return i.Token != ""
	}
	return i.UserID != uuid.Nil
}

// Key is the stable lookup key of the identity. Anonymous tokens are hashed so the raw
// token, which is a bearer credential for the cart, is never stored or logged.
func (i Identity) Key() string {
	if i.IsAnonymous() {
		return HashToken(i.Token)
	}
	return i.UserID.String()
}

func HashToken(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
