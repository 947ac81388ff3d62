package audiopipeline

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
)

func TestFramerEmitsNoPartialChunks(t *testing.T) {
	f := NewFramer()
	chunks := f.Push(make([]float32, chunkSamples-1))
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for a partial fill, got %d", len(chunks))
	}
}

func TestFramerEmitsExactSizeChunks(t *testing.T) {
	f := NewFramer()
	chunks := f.Push(make([]float32, chunkSamples*2+100))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 full chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		raw, err := base64.StdEncoding.DecodeString(c)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(raw) != chunkSamples*2 {
			t.Fatalf("chunk plaintext length = %d, want %d", len(raw), chunkSamples*2)
		}
	}
}

func TestFramerCarriesResidualAcrossCalls(t *testing.T) {
	f := NewFramer()
	f.Push(make([]float32, 100))
	chunks := f.Push(make([]float32, chunkSamples-100))
	if len(chunks) != 1 {
		t.Fatalf("expected residual to complete exactly one chunk, got %d", len(chunks))
	}
}

func TestEncodeChunkClampsAndConverts(t *testing.T) {
	samples := []float32{0, 1, -1, 1.5, -1.5, 0.5}
	encoded := encodeChunk(samples)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != len(samples)*2 {
		t.Fatalf("got %d bytes, want %d", len(raw), len(samples)*2)
	}

	want := []int16{0, 32767, -32767, 32767, -32767, 16384}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		if i == 5 {
			// 0.5*32767 rounds to 16384 (round-half-to-even not required here).
			if got < 16383 || got > 16384 {
				t.Errorf("sample %d: got %d, want ~%d", i, got, w)
			}
			continue
		}
		if got != w {
			t.Errorf("sample %d: got %d, want %d", i, got, w)
		}
	}
}
