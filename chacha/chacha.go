// Package chacha implements a ChaCha-based deterministic random stream
// that reproduces the output of the Rust rand_chacha generators
// (ChaCha8Rng seeded with SeedableRng::seed_from_u64), so that fixtures
// generated here match fixtures generated by the Rust tooling.
package chacha

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

const (
	// DefaultRounds is the round count of ChaCha8Rng.
	DefaultRounds = 8

	blockWords = 16

	pcgMul uint64 = 6364136223846793005
	pcgInc uint64 = 11634580027462260723
)

var sigma = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

type Rng struct {
	key     [8]uint32
	stream  uint64
	counter uint64
	rounds  int
	buf     [blockWords]uint32
	idx     int
	draws   uint64
}

func New(seed uint64) *Rng {
	return NewRounds(seed, DefaultRounds)
}

func NewRounds(seed uint64, rounds int) *Rng {
	if rounds < 2 || rounds%2 != 0 {
		panic(fmt.Sprintf("chacha: bad round count %d", rounds))
	}
	r := &Rng{rounds: rounds, idx: blockWords}
	state := seed
	for i := range r.key {
		r.key[i] = pcg32(&state)
	}
	return r
}

// NewKey builds a stream directly from a 32-byte key, bypassing seed
// expansion.
func NewKey(key [32]byte, rounds int) *Rng {
	r := NewRounds(0, rounds)
	for i := range r.key {
		r.key[i] = binary.LittleEndian.Uint32(key[4*i:])
	}
	return r
}

// pcg32 is the seed expander used by rand_core's default seed_from_u64.
func pcg32(state *uint64) uint32 {
	*state = *state*pcgMul + pcgInc
	s := *state
	xorshifted := uint32(((s >> 18) ^ s) >> 27)
	rot := int(s >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

func (r *Rng) refill() {
	block(&r.buf, &r.key, r.counter, r.stream, r.rounds)
	r.counter++
	r.idx = 0
}

func (r *Rng) Uint32() uint32 {
	if r.idx >= blockWords {
		r.refill()
	}
	v := r.buf[r.idx]
	r.idx++
	r.draws++
	return v
}

func (r *Rng) Uint64() uint64 {
	lo := uint64(r.Uint32())
	hi := uint64(r.Uint32())
	return hi<<32 | lo
}

func (r *Rng) Int64() int64 {
	return int64(r.Uint64())
}

// Intn returns a uniform value in [0, n). It uses the widening-multiply
// rejection sampler of rand's UniformInt, so the number of words consumed
// per call matches the Rust implementation.
func (r *Rng) Intn(n int) int {
	if n <= 0 {
		panic("chacha: invalid argument to Intn")
	}
	rng := uint64(n)
	reject := (-rng) % rng
	zone := math.MaxUint64 - reject
	for {
		hi, lo := bits.Mul64(r.Uint64(), rng)
		if lo <= zone {
			return int(hi)
		}
	}
}

// Draws reports the number of 32-bit words consumed so far.
func (r *Rng) Draws() uint64 {
	return r.draws
}

// KeyStream fills dst with raw keystream bytes, continuing from the
// current position.
func (r *Rng) KeyStream(dst []byte) {
	var w [4]byte
	for len(dst) > 0 {
		binary.LittleEndian.PutUint32(w[:], r.Uint32())
		n := copy(dst, w[:])
		dst = dst[n:]
	}
}

func quarter(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	a += b
	d = bits.RotateLeft32(d^a, 16)
	c += d
	b = bits.RotateLeft32(b^c, 12)
	a += b
	d = bits.RotateLeft32(d^a, 8)
	c += d
	b = bits.RotateLeft32(b^c, 7)
	return a, b, c, d
}

// block computes one keystream block. Words 12-13 hold the 64-bit block
// counter and words 14-15 the 64-bit stream id.
func block(out *[blockWords]uint32, key *[8]uint32, counter, stream uint64, rounds int) {
	in := [blockWords]uint32{
		sigma[0], sigma[1], sigma[2], sigma[3],
		key[0], key[1], key[2], key[3],
		key[4], key[5], key[6], key[7],
		uint32(counter), uint32(counter >> 32),
		uint32(stream), uint32(stream >> 32),
	}
	x := in
	for i := 0; i < rounds; i += 2 {
		x[0], x[4], x[8], x[12] = quarter(x[0], x[4], x[8], x[12])
		x[1], x[5], x[9], x[13] = quarter(x[1], x[5], x[9], x[13])
		x[2], x[6], x[10], x[14] = quarter(x[2], x[6], x[10], x[14])
		x[3], x[7], x[11], x[15] = quarter(x[3], x[7], x[11], x[15])

		x[0], x[5], x[10], x[15] = quarter(x[0], x[5], x[10], x[15])
		x[1], x[6], x[11], x[12] = quarter(x[1], x[6], x[11], x[12])
		x[2], x[7], x[8], x[13] = quarter(x[2], x[7], x[8], x[13])
		x[3], x[4], x[9], x[14] = quarter(x[3], x[4], x[9], x[14])
	}
	for i := range out {
		out[i] = x[i] + in[i]
	}
}
