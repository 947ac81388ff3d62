// Package audiopipeline binds capture, resampling, and framing into
// a single start/stop unit (C5), sitting between the device-facing
// audiocapture package and the transport sender.
package audiopipeline

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// chunkSamples is the fixed EncodedChunk size: 100 ms at 16 kHz.
const chunkSamples = 1600

// Framer accumulates 16 kHz mono float samples and emits base64
// i16-little-endian chunks of exactly chunkSamples each. No partial
// chunk is ever emitted; residual samples carry over to the next
// call. There is no flush: a stopped pipeline discards its tail,
// matching the recognizer's own commit signal rather than ours.
type Framer struct {
	residual []float32
}

// NewFramer creates an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Push appends newly resampled samples and returns zero or more
// base64-encoded chunks, each exactly 3200 bytes of plaintext PCM.
func (f *Framer) Push(samples []float32) []string {
	f.residual = append(f.residual, samples...)

	var chunks []string
	i := 0
	for i+chunkSamples <= len(f.residual) {
		chunks = append(chunks, encodeChunk(f.residual[i:i+chunkSamples]))
		i += chunkSamples
	}

	remainder := len(f.residual) - i
	copy(f.residual, f.residual[i:])
	f.residual = f.residual[:remainder]

	return chunks
}

func encodeChunk(samples []float32) string {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := s
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		i16 := int16(math.Round(float64(v) * 32767))
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(i16))
	}
	return base64.StdEncoding.EncodeToString(buf)
}
