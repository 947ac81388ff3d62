// Package resample implements the streaming, fixed-ratio
// windowed-sinc resampler (C3) that converts the device's native
// input rate to 16 kHz mono.
//
// No resampling library appears anywhere in the retrieval corpus, so
// this is written against the standard library only — see DESIGN.md
// for that justification.
package resample

import (
	"fmt"
	"math"
)

// OutputRate is the fixed target sample rate of the resampler.
const OutputRate = 16000

// halfWidth is the sinc kernel half-width in output-relative lobes; it
// is scaled by the cutoff factor to get the effective half-width in
// input samples for a given ratio.
const halfWidth = 8

// Resampler converts mono float32 PCM from a fixed input rate to
// 16 kHz. It is not safe for concurrent use: the audio pipeline owns
// exactly one Resampler per session (§3 lifetimes).
type Resampler struct {
	inputRate int
	ratio     float64 // OutputRate / inputRate
	cutoff    float64 // sinc cutoff scale: min(1, ratio), bandlimits on downsample
	effWidth  int      // effective kernel half-width in input samples

	buf     []float32 // accumulated input samples not yet fully consumed
	scratch []float32 // residual from ProcessBuffered's chunk segmentation
	pos     float64   // next output sample's continuous position into buf
}

// New creates a Resampler from inputRate to OutputRate.
func New(inputRate int) *Resampler {
	ratio := float64(OutputRate) / float64(inputRate)
	cutoff := ratio
	if cutoff > 1 {
		cutoff = 1
	}
	effWidth := int(math.Ceil(float64(halfWidth) / cutoff))
	if effWidth < 1 {
		effWidth = 1
	}
	return &Resampler{
		inputRate: inputRate,
		ratio:     ratio,
		cutoff:    cutoff,
		effWidth:  effWidth,
	}
}

// SincLen reports the kernel's tap count, the tolerance unit used by
// the ratio-fidelity invariant in §8.
func (r *Resampler) SincLen() int { return 2*r.effWidth + 1 }

// InputChunkSize is the 10 ms window at the input rate required by
// Process's fixed-chunk mode.
func (r *Resampler) InputChunkSize() int {
	return r.inputRate / 100
}

// Process requires exactly one InputChunkSize()-sized chunk and
// returns the corresponding 16 kHz output block.
func (r *Resampler) Process(in []float32) ([]float32, error) {
	want := r.InputChunkSize()
	if len(in) != want {
		return nil, fmt.Errorf("resample: Process requires exactly %d samples, got %d", want, len(in))
	}
	return r.feed(in), nil
}

// ProcessBuffered accepts arbitrary-length input, accumulating any
// remainder smaller than InputChunkSize() internally between calls,
// and returns the concatenated output of every full chunk processed
// during this call.
//
// The teacher corpus and the rest of the retrieval pack have no
// equivalent of Rust's explicit `&mut scratch` out-parameter idiom;
// the residual buffer is kept as Resampler's own field instead, which
// is the idiomatic Go shape for "state that persists between calls on
// the same receiver". Reset clears it along with the delay line.
func (r *Resampler) ProcessBuffered(in []float32) []float32 {
	r.scratch = append(r.scratch, in...)

	chunkSize := r.InputChunkSize()
	var out []float32
	i := 0
	for i+chunkSize <= len(r.scratch) {
		out = append(out, r.feed(r.scratch[i:i+chunkSize])...)
		i += chunkSize
	}

	remainder := len(r.scratch) - i
	copy(r.scratch, r.scratch[i:])
	r.scratch = r.scratch[:remainder]

	return out
}

// Reset clears both the internal delay line and the buffered
// residual, so a new session's signal cannot ring through from the
// previous one.
func (r *Resampler) Reset() {
	r.buf = nil
	r.scratch = nil
	r.pos = 0
}

// feed appends samples to the delay line, emits every output sample
// whose kernel window now has enough input to evaluate, and trims the
// delay line down to the still-needed margin.
func (r *Resampler) feed(samples []float32) []float32 {
	r.buf = append(r.buf, samples...)

	step := 1.0 / r.ratio
	var out []float32
	for {
		hi := int(math.Ceil(r.pos)) + r.effWidth + 1
		if hi > len(r.buf) {
			break
		}
		out = append(out, r.sampleAt(r.pos))
		r.pos += step
	}

	lo := int(math.Floor(r.pos)) - r.effWidth
	if lo > 0 {
		if lo > len(r.buf) {
			lo = len(r.buf)
		}
		copy(r.buf, r.buf[lo:])
		r.buf = r.buf[:len(r.buf)-lo]
		r.pos -= float64(lo)
	}

	return out
}

// sampleAt evaluates the windowed-sinc kernel centered at the
// fractional position pos into the delay line.
func (r *Resampler) sampleAt(pos float64) float32 {
	center := int(math.Floor(pos))
	lo := center - r.effWidth
	hi := center + r.effWidth
	if lo < 0 {
		lo = 0
	}
	if hi >= len(r.buf) {
		hi = len(r.buf) - 1
	}

	var sum float64
	for k := lo; k <= hi; k++ {
		x := pos - float64(k)
		sum += float64(r.buf[k]) * kernel(x, r.cutoff, r.effWidth)
	}
	return float32(sum)
}

// kernel evaluates a Hann-windowed, cutoff-scaled sinc: the standard
// windowed-sinc interpolation/decimation kernel. cutoff bandlimits the
// signal to the output Nyquist when downsampling (cutoff < 1); it is 1
// for upsampling, where no extra bandlimiting is needed.
func kernel(x, cutoff float64, width int) float64 {
	if math.Abs(x) > float64(width) {
		return 0
	}
	window := 0.5 * (1 + math.Cos(math.Pi*x/float64(width)))
	return cutoff * sinc(cutoff*x) * window
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
