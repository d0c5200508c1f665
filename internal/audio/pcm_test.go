package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePCM16(t *testing.T) {
	// Samples: 0, 16384 (0.5), -32768 (-1.0), 32767 (just under 1.0).
	data := []byte{
		0x00, 0x00,
		0x00, 0x40,
		0x00, 0x80,
		0xFF, 0x7F,
	}
	samples, err := DecodePCM16(data)
	require.NoError(t, err)
	require.Len(t, samples, 4)
	assert.InDelta(t, 0.0, samples[0], 1e-6)
	assert.InDelta(t, 0.5, samples[1], 1e-6)
	assert.InDelta(t, -1.0, samples[2], 1e-6)
	assert.InDelta(t, 32767.0/32768.0, samples[3], 1e-6)
}

func TestDecodePCM16RejectsOddLength(t *testing.T) {
	_, err := DecodePCM16([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodePCM16Empty(t *testing.T) {
	samples, err := DecodePCM16(nil)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestWrapWAV(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := WrapWAV(pcm, SampleRate)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format tag")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "mono")
	assert.Equal(t, uint32(SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(SampleRate*2), binary.LittleEndian.Uint32(wav[28:32]), "byte rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}
