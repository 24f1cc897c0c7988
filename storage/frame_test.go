package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("abcdefgh"), 512)
	small := []byte{1, 2, 3}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for _, data := range [][]byte{nil, small, compressible} {
			frame, err := encodeFrame(c, data)
			require.NoError(t, err)

			got, err := decodeFrame(frame)
			require.NoError(t, err, "%s", c)
			assert.Equal(t, len(data), len(got))
			assert.True(t, bytes.Equal(data, got))
		}
	}

	frame, err := encodeFrame(CompressionZSTD, compressible)
	require.NoError(t, err)
	assert.Equal(t, byte(CompressionZSTD), frame[0])
	assert.Less(t, len(frame), len(compressible))

	frame, err = encodeFrame(CompressionZSTD, small)
	require.NoError(t, err)
	assert.Equal(t, byte(CompressionNone), frame[0], "incompressible data is stored raw")
}

func TestFrameChecksum(t *testing.T) {
	frame, err := encodeFrame(CompressionNone, []byte("payload"))
	require.NoError(t, err)

	frame[len(frame)-1] ^= 0xff
	_, err = decodeFrame(frame)
	assert.ErrorIs(t, err, ErrChecksum)

	_, err = decodeFrame(nil)
	assert.ErrorIs(t, err, ErrChecksum)
	_, err = decodeFrame(frame[:3])
	assert.ErrorIs(t, err, ErrChecksum)

	_, err = decodeFrame([]byte{frameTombstone})
	assert.ErrorIs(t, err, ErrNotFound)
}
