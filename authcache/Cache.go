/*
File Name:  Cache.go

Cache wraps a store.Store to avoid re-parsing a capability envelope's
JSON condition list and re-validating its padding on every authorization
check against it. Grounded on the teacher's blake3 fingerprinting idiom
(warehouse/Store.go, fragment/Merkle Tree.go): a blake3.Sum256 of the raw
capability bytes is stored alongside the parsed result, so a changed
capability at the same message id hash invalidates the cached entry
instead of silently reusing a stale parse.

The Ed25519 signature check (authorization.Authorization.Authorizes step
1) runs against a fresh candidate envelope on every call regardless of
cache state — each candidate carries its own signature, so that step is
never something a cache hit can skip.
*/

package authcache

import (
	"encoding/json"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/nma-go/core/authorization"
	"github.com/nma-go/core/protocol"
	"github.com/nma-go/core/store"
	"lukechampine.com/blake3"
)

// Cache memoizes the parsed form of capability envelopes keyed by their
// message id hash.
type Cache struct {
	backing store.Store
}

// New wraps backing as an authorization verification cache.
func New(backing store.Store) *Cache {
	return &Cache{backing: backing}
}

type cachedEntry struct {
	Fingerprint [32]byte                  `json:"fingerprint"`
	PublicKey   []byte                    `json:"public_key"`
	Conditions  []authorization.Condition `json:"conditions"`
}

func cacheKey(channelID protocol.ChannelId, capabilityMessageID protocol.MessageId) []byte {
	h := protocol.CalculateMessageIdHash(channelID, capabilityMessageID)
	return h[:]
}

// Authorizes behaves like authorization.New(capabilityBytes,
// capabilityMessageID).Authorizes, but reuses a previously cached
// capability parse when the raw capability bytes have not changed since
// the last call for the same (channelID, capabilityMessageID) pair.
func (c *Cache) Authorizes(channelID protocol.ChannelId, capabilityBytes []byte, capabilityMessageID protocol.MessageId, candidateEnvelope *protocol.Envelope, candidateMessageID protocol.MessageId) (bool, error) {
	key := cacheKey(channelID, capabilityMessageID)
	fingerprint := blake3.Sum256(capabilityBytes)

	if raw, found := c.backing.Get(key); found {
		var entry cachedEntry
		if err := json.Unmarshal(raw, &entry); err == nil && entry.Fingerprint == fingerprint {
			return c.authorizeFromEntry(entry, capabilityMessageID, candidateEnvelope, candidateMessageID)
		}
	}

	auth := authorization.New(capabilityBytes, capabilityMessageID)
	ok, err := auth.Authorizes(candidateEnvelope, candidateMessageID)
	if err != nil {
		return false, err
	}

	// auth.Authorizes checks the padding only after the candidate's
	// signature verifies, so only then is the capability known to be valid.
	if len(capabilityBytes) >= ed25519.PublicKeySize && candidateEnvelope.Verify(ed25519.PublicKey(capabilityBytes[:ed25519.PublicKeySize])) == nil {
		if conditions, parseErr := authorization.ParseConditions(capabilityBytes[ed25519.PublicKeySize:]); parseErr == nil {
			entry := cachedEntry{
				Fingerprint: fingerprint,
				PublicKey:   append([]byte{}, capabilityBytes[:ed25519.PublicKeySize]...),
				Conditions:  conditions,
			}
			if raw, marshalErr := json.Marshal(entry); marshalErr == nil {
				_ = c.backing.Set(key, raw)
			}
		}
	}

	return ok, nil
}

func (c *Cache) authorizeFromEntry(entry cachedEntry, capabilityMessageID protocol.MessageId, candidateEnvelope *protocol.Envelope, candidateMessageID protocol.MessageId) (bool, error) {
	if err := candidateEnvelope.Verify(ed25519.PublicKey(entry.PublicKey)); err != nil {
		return false, nil
	}

	auth := &authorization.Authorization{MessageID: capabilityMessageID}
	for _, cond := range entry.Conditions {
		ok, err := cond.Check(auth, candidateEnvelope, candidateMessageID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Invalidate removes any cached entry for the given capability key.
func (c *Cache) Invalidate(channelID protocol.ChannelId, capabilityMessageID protocol.MessageId) error {
	return c.backing.Delete(cacheKey(channelID, capabilityMessageID))
}
