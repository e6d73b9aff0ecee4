/*
File Name:  Identity.go

Ed25519 keypair lifecycle, adapted from the teacher's initPeerID: load an
existing hex-encoded private key from the configured file, or generate a
fresh keypair and persist it. Unlike the teacher's secp256k1 peer ID,
this keypair is used to sign envelopes and capabilities, not to identify
a network peer — there is no peer list or connection tracking here.
*/

package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/cloudflare/circl/sign/ed25519"
)

// Identity holds a loaded or freshly generated Ed25519 keypair.
type Identity struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Load reads a hex-encoded private key from filename. If the file does
// not exist, a new keypair is generated and written to filename. A
// corrupt existing file is a fatal error, matching initPeerID's
// log.Printf + os.Exit(1) behavior for a corrupted config private key.
func Load(filename string) (*Identity, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("identity: reading %q: %w", filename, err)
		}
		return generate(filename)
	}

	raw, err := hex.DecodeString(string(data))
	if err != nil {
		log.Printf("Identity key file %q is corrupted! Error: %s\n", filename, err)
		os.Exit(1)
	}
	if len(raw) != ed25519.PrivateKeySize {
		log.Printf("Identity key file %q has wrong length %d, want %d\n", filename, len(raw), ed25519.PrivateKeySize)
		os.Exit(1)
	}

	priv := ed25519.PrivateKey(raw)
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, priv[ed25519.PrivateKeySize-ed25519.PublicKeySize:])
	return &Identity{PublicKey: pub, PrivateKey: priv}, nil
}

func generate(filename string) (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Printf("Error generating Ed25519 keypair: %s\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(filename, []byte(hex.EncodeToString(priv)), 0600); err != nil {
		return nil, fmt.Errorf("identity: writing %q: %w", filename, err)
	}

	return &Identity{PublicKey: pub, PrivateKey: priv}, nil
}
