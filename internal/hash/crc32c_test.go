package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Standard check value for "123456789".
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))

	h := NewCRC32C()
	_, _ = h.Write([]byte("1234"))
	_, _ = h.Write([]byte("56789"))
	assert.Equal(t, uint32(0xe3069283), h.Sum32())

	assert.True(t, VerifyCRC32C([]byte("123456789"), 0xe3069283))
	assert.False(t, VerifyCRC32C([]byte("123456780"), 0xe3069283))
}
