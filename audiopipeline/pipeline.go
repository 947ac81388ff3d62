package audiopipeline

import (
	"errors"
	"sync"

	"dictate/audiocapture"
	"dictate/resample"

	"github.com/gen2brain/malgo"
)

// ErrAlreadyRunning is returned by a second Start while the pipeline
// is already active.
var ErrAlreadyRunning = errors.New("audiopipeline: already running")

// Pipeline binds the capture source (C2), resampler (C3), and framer
// (C4) into one start/stop unit. It owns its capture handle and
// resampler state for the entire session; no other component may
// touch them directly.
type Pipeline struct {
	deviceID   string
	inputRate  int
	channels   int

	mu        sync.Mutex
	running   bool
	src       *audiocapture.Source
	resampler *resample.Resampler
	done      chan struct{}
}

// New creates a Pipeline bound to one input device's native
// configuration. ctx is the shared miniaudio context from an
// audiocapture.Enumerator.
func New(ctx *malgo.AllocatedContext, deviceID string, inputRate, channels int) *Pipeline {
	return &Pipeline{
		deviceID:  deviceID,
		inputRate: inputRate,
		channels:  channels,
	}
}

// InputSampleRate reports the device's native sample rate.
func (p *Pipeline) InputSampleRate() int { return p.inputRate }

// OutputSampleRate is always 16 kHz.
func (p *Pipeline) OutputSampleRate() int { return resample.OutputRate }

// Start allocates a bounded channel and a single processing goroutine
// that owns the resampler and framer, writing each EncodedChunk
// (base64 PCM string) onto the returned channel with back-pressure: a
// full channel blocks the processing goroutine rather than dropping
// data, unlike the OS capture callback's own drop-on-full boundary.
//
// src must already be constructed (but not yet started) against the
// same device id this Pipeline was created for; the caller's
// audiocapture.Enumerator keeps owning the underlying miniaudio
// context across the Pipeline's lifetime.
func (p *Pipeline) Start(src *audiocapture.Source, capacity int) (<-chan string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil, ErrAlreadyRunning
	}
	if capacity <= 0 {
		capacity = 16
	}

	frames, err := src.Start(capacity)
	if err != nil {
		return nil, err
	}

	resampler := resample.New(p.inputRate)
	framer := NewFramer()
	out := make(chan string, capacity)
	done := make(chan struct{})

	go func() {
		// Deferred calls run last-in first-out: out is closed before
		// done, so Stop (which waits on done) returns with out closed.
		defer close(done)
		defer close(out)
		for frame := range frames {
			mono := toMono(frame.Samples, frame.Channels)
			resampled := resampler.ProcessBuffered(mono)
			for _, chunk := range framer.Push(resampled) {
				out <- chunk
			}
		}
	}()

	p.src = src
	p.resampler = resampler
	p.done = done
	p.running = true
	return out, nil
}

// Stop signals the processing goroutine to end (by stopping capture,
// which closes the frame channel it ranges over), waits for it to
// exit, and drops the capture handle. After Stop completes, no
// further chunks arrive on the outbound channel and it is closed.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	err := p.src.Stop()
	<-p.done

	p.resampler.Reset()
	p.src = nil
	p.resampler = nil
	p.done = nil
	p.running = false
	return err
}

// IsRunning reports whether the pipeline is currently processing.
func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// toMono averages interleaved channels down to a single channel. A
// device opened with channels == 1 already satisfies this and the
// loop is a no-op copy.
func toMono(samples []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}
	n := len(samples) / channels
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
