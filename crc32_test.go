package rombp

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_CRCWriter_MatchesStdlib(t *testing.T) {
	data := []byte("AABBCCDD")

	w := NewCRCWriter()
	_, err := w.Write(data)
	assert.NoError(t, err)
	assert.Equal(t, crc32.ChecksumIEEE(data), w.Sum32())
}

func Test_CRCWriter_ComposesAcrossWrites(t *testing.T) {
	// finalize(update(update(0,a),b)) == crc32(a || b)
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "a")
		b := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "b")

		w := NewCRCWriter()
		_, _ = w.Write(a)
		_, _ = w.Write(b)

		combined := append(append([]byte{}, a...), b...)
		assert.Equal(t, crc32.ChecksumIEEE(combined), w.Sum32())
	})
}

func Test_CRCWriter_Reset(t *testing.T) {
	w := NewCRCWriter()
	_, _ = w.Write([]byte("anything"))
	w.Reset()
	assert.Equal(t, uint32(0), w.Sum32())
}
