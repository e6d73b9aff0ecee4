/*
File Name:  hash.go

Gimli-Hash: a sponge construction over the Gimli permutation with a 16-byte
rate and 32-byte capacity. Used for every protocol digest in this module
(MessageIdHash, MessageHash) via domain-separated calls to Sum.
*/

package gimli

const rate = 16 // bytes absorbed/squeezed per permutation call

// Sum computes a Gimli-Hash digest, truncated/extended to outLen bytes, over
// the concatenation of all data slices. outLen may be any size; output
// beyond one rate block is produced by repeated squeezing.
func Sum(outLen int, data ...[]byte) []byte {
	var state [words]uint32

	pending := make([]byte, 0, rate)
	for _, chunk := range data {
		pending = append(pending, chunk...)
		for len(pending) >= rate {
			xorBlock(&state, pending[:rate])
			Permute(&state)
			pending = pending[rate:]
		}
	}
	padAndAbsorb(&state, pending)

	out := make([]byte, 0, outLen)
	for len(out) < outLen {
		var full [BlockSize]byte
		stateToBytes(&state, full[:])
		take := rate
		if remain := outLen - len(out); remain < take {
			take = remain
		}
		out = append(out, full[:take]...)
		if len(out) < outLen {
			Permute(&state)
		}
	}
	return out
}

// xorBlock XORs a full rate-sized chunk into the first `rate` bytes of state.
func xorBlock(state *[words]uint32, chunk []byte) {
	var full [BlockSize]byte
	stateToBytes(state, full[:])
	for i := 0; i < rate; i++ {
		full[i] ^= chunk[i]
	}
	*state = bytesToState(full[:])
}

// padAndAbsorb XORs a final, possibly-empty, partial block (< rate bytes)
// into state using the Gimli-Hash padding rule, then permutes once.
func padAndAbsorb(state *[words]uint32, tail []byte) {
	var full [BlockSize]byte
	stateToBytes(state, full[:])
	for i, b := range tail {
		full[i] ^= b
	}
	full[len(tail)] ^= 0x1F
	full[rate-1] ^= 0x80
	*state = bytesToState(full[:])
	Permute(state)
}
