package gimli

import (
	"bytes"
	"testing"

	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

type GimliSuite struct{}

var _ = gc.Suite(&GimliSuite{})

func (s *GimliSuite) TestPermuteIsDeterministic(c *gc.C) {
	var a, b [words]uint32
	for i := range a {
		a[i] = uint32(i * 7)
		b[i] = uint32(i * 7)
	}
	Permute(&a)
	Permute(&b)
	c.Assert(a, gc.Equals, b)
}

func (s *GimliSuite) TestPermuteChangesState(c *gc.C) {
	var state [words]uint32
	before := state
	Permute(&state)
	c.Assert(state, gc.Not(gc.Equals), before)
}

func (s *GimliSuite) TestHashDeterministic(c *gc.C) {
	h1 := Sum(32, []byte("the quick brown fox"))
	h2 := Sum(32, []byte("the quick brown fox"))
	c.Assert(bytes.Equal(h1, h2), gc.Equals, true)
}

func (s *GimliSuite) TestHashDomainSeparation(c *gc.C) {
	h1 := Sum(32, []byte("domain1"), []byte("rest"))
	h2 := Sum(32, []byte("domain2"), []byte("rest"))
	c.Assert(bytes.Equal(h1, h2), gc.Equals, false)
}

func (s *GimliSuite) TestHashVariableLength(c *gc.C) {
	h6 := Sum(6, []byte("abc"))
	h16 := Sum(16, []byte("abc"))
	c.Assert(len(h6), gc.Equals, 6)
	c.Assert(len(h16), gc.Equals, 16)
	c.Assert(bytes.Equal(h16[:6], h6), gc.Equals, true)
}

func (s *GimliSuite) TestHashMultiChunkMatchesConcatenated(c *gc.C) {
	h1 := Sum(32, []byte("hello"), []byte(" "), []byte("world"))
	h2 := Sum(32, []byte("hello world"))
	c.Assert(bytes.Equal(h1, h2), gc.Equals, true)
}

// TestHashExactRateMultipleLengths exercises inputs whose total absorbed
// length is an exact positive multiple of the 16-byte rate — the case
// protocol.CalculateMessageIdHash hits on every call (10+32+6 = 48 bytes) —
// and confirms it does not collide with neighboring lengths or with the
// same bytes split across chunk boundaries.
func (s *GimliSuite) TestHashExactRateMultipleLengths(c *gc.C) {
	for _, n := range []int{16, 32, 48, 64} {
		data := bytes.Repeat([]byte("x"), n)

		h := Sum(32, data)
		hOffByOne := Sum(32, data[:n-1])
		c.Assert(bytes.Equal(h, hOffByOne), gc.Equals, false)

		// Splitting the same exact-multiple input across chunk boundaries
		// must not change the digest.
		split := Sum(32, data[:rate], data[rate:])
		c.Assert(bytes.Equal(h, split), gc.Equals, true)
	}
}

func (s *GimliSuite) TestAEADRoundTrip(c *gc.C) {
	var key [KeySize]byte
	var nonce [NonceSize]byte
	for i := range key {
		key[i] = byte(i)
	}
	for i := range nonce {
		nonce[i] = byte(i * 3)
	}
	aead := NewAEAD(key)
	plaintext := bytes.Repeat([]byte("A"), 100)
	ad := []byte("associated data")

	ciphertext := aead.Seal(nonce, plaintext, ad)
	c.Assert(len(ciphertext), gc.Equals, len(plaintext)+TagSize)

	decrypted, err := aead.Open(nonce, ciphertext, ad)
	c.Assert(err, gc.IsNil)
	c.Assert(bytes.Equal(decrypted, plaintext), gc.Equals, true)
}

func (s *GimliSuite) TestAEADRoundTripExactRateMultipleLengths(c *gc.C) {
	var key [KeySize]byte
	var nonce [NonceSize]byte
	aead := NewAEAD(key)
	ad := []byte("associated data")

	for _, n := range []int{16, 32, 48} {
		plaintext := bytes.Repeat([]byte("B"), n)

		ciphertext := aead.Seal(nonce, plaintext, ad)
		c.Assert(len(ciphertext), gc.Equals, len(plaintext)+TagSize)

		decrypted, err := aead.Open(nonce, ciphertext, ad)
		c.Assert(err, gc.IsNil)
		c.Assert(bytes.Equal(decrypted, plaintext), gc.Equals, true)
	}
}

func (s *GimliSuite) TestAEADRoundTripEmptyPlaintext(c *gc.C) {
	var key [KeySize]byte
	var nonce [NonceSize]byte
	aead := NewAEAD(key)

	ciphertext := aead.Seal(nonce, nil, []byte("ad"))
	c.Assert(len(ciphertext), gc.Equals, TagSize)

	decrypted, err := aead.Open(nonce, ciphertext, []byte("ad"))
	c.Assert(err, gc.IsNil)
	c.Assert(len(decrypted), gc.Equals, 0)
}

func (s *GimliSuite) TestAEADTamperDetection(c *gc.C) {
	var key [KeySize]byte
	var nonce [NonceSize]byte
	aead := NewAEAD(key)

	ciphertext := aead.Seal(nonce, []byte("secret message"), nil)
	ciphertext[0] ^= 0x01

	_, err := aead.Open(nonce, ciphertext, nil)
	c.Assert(err, gc.Equals, ErrAuthenticationFailed)
}

func (s *GimliSuite) TestAEADWrongNonceFails(c *gc.C) {
	var key [KeySize]byte
	var nonce, otherNonce [NonceSize]byte
	otherNonce[0] = 1
	aead := NewAEAD(key)

	ciphertext := aead.Seal(nonce, []byte("secret message"), nil)
	_, err := aead.Open(otherNonce, ciphertext, nil)
	c.Assert(err, gc.Equals, ErrAuthenticationFailed)
}
