package chacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20"
)

func TestZeroKeyChaCha20(t *testing.T) {
	r := NewKey([32]byte{}, 20)
	want := []uint32{0xade0b876, 0x903df1a0, 0xe56a5d40, 0x28bd8653}
	for i, w := range want {
		assert.Equalf(t, w, r.Uint32(), "word %d", i)
	}
}

func TestBlockMatchesXCrypto(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	// Three blocks, so the counter crosses from 0 to 2.
	const n = 3 * 64
	c, err := chacha20.NewUnauthenticatedCipher(key[:], make([]byte, chacha20.NonceSize))
	require.NoError(t, err)
	want := make([]byte, n)
	c.XORKeyStream(want, want)

	got := make([]byte, n)
	NewKey(key, 20).KeyStream(got)
	assert.Equal(t, want, got)
}

func TestSeedZero(t *testing.T) {
	r := New(0)
	assert.Equal(t, uint64(13080132717333068652), r.Uint64())
	assert.Equal(t, uint64(8594738769458413623), r.Uint64())
	assert.Equal(t, uint64(12896916468484187878), r.Uint64())
	assert.Equal(t, uint64(6), r.Draws())

	r = New(0)
	assert.Equal(t, int64(-5366611356376482964), r.Int64())

	r = New(7)
	assert.Equal(t, int64(2910824217569608635), r.Int64())
	assert.Equal(t, int64(3098856782162503994), r.Int64())
}

func TestIntn(t *testing.T) {
	r := New(0)
	var got []int
	for i := 0; i < 5; i++ {
		got = append(got, r.Intn(10))
	}
	assert.Equal(t, []int{7, 4, 6, 0, 8}, got)

	r = New(0)
	got = got[:0]
	for i := 0; i < 8; i++ {
		got = append(got, r.Intn(3))
	}
	assert.Equal(t, []int{2, 1, 2, 0, 2, 1, 2, 2}, got)

	r = New(42)
	for i := 0; i < 10000; i++ {
		v := r.Intn(2048)
		if v < 0 || v >= 2048 {
			t.Fatalf("Intn(2048) = %d out of range", v)
		}
	}
	assert.Equal(t, 0, New(1).Intn(1))

	assert.Panics(t, func() { New(0).Intn(0) })
	assert.Panics(t, func() { NewRounds(0, 7) })
}

func TestDeterministic(t *testing.T) {
	a, b := New(99), New(99)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
	c, d := New(1), New(2)
	assert.NotEqual(t, c.Uint64(), d.Uint64())
}
