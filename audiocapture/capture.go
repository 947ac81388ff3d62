package audiocapture

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/gen2brain/malgo"
)

// ErrAlreadyRunning is returned by a second Start while capture is
// already active.
var ErrAlreadyRunning = errors.New("audiocapture: already running")

// Frame is one delivery of interleaved float32 samples at the
// device's native rate and channel count.
type Frame struct {
	Samples  []float32
	Channels int
}

// Source opens one input device and delivers whatever interleaved
// float frames the OS hands it on a bounded, non-blocking channel.
// The OS capture callback never blocks and never calls into user
// code. It does allocate: each delivery copies the samples into a new
// slice that is handed to the channel.
type Source struct {
	ctx        *malgo.AllocatedContext
	deviceID   string
	sampleRate int
	channels   int

	mu      sync.Mutex
	device  *malgo.Device
	running bool

	out chan Frame
}

// NewSource opens a Source bound to deviceID at its native
// sampleRate/channels. ctx is shared with an Enumerator so device
// listing and capture use one miniaudio backend.
func NewSource(ctx *malgo.AllocatedContext, deviceID string, sampleRate, channels int) *Source {
	return &Source{
		ctx:        ctx,
		deviceID:   deviceID,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Start begins delivering frames on the returned channel. capacity bounds
// the channel (~100 frames per §5); a full channel drops the newest
// frame rather than blocking the OS callback.
func (s *Source) Start(capacity int) (<-chan Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrAlreadyRunning
	}

	if capacity <= 0 {
		capacity = 100
	}
	s.out = make(chan Frame, capacity)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(s.channels)
	deviceConfig.SampleRate = uint32(s.sampleRate)

	// The channel is allocated once, above. Each delivery copies into a
	// freshly allocated slice because the channel send below transfers
	// ownership onward; this is one allocation per callback.
	out := s.out
	callbacks := malgo.DeviceCallbacks{
		Data: func(output, input []byte, frameCount uint32) {
			n := int(frameCount) * s.channels
			samples := unsafe.Slice((*float32)(unsafe.Pointer(&input[0])), n)

			buf := make([]float32, n)
			copy(buf, samples)

			select {
			case out <- Frame{Samples: buf, Channels: s.channels}:
			default:
				// Bounded channel full: drop. Accumulating unbounded
				// latency is worse than dropping a frame.
			}
		},
	}

	device, err := malgo.InitDevice(s.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("audiocapture: init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("audiocapture: start device: %w", err)
	}

	s.device = device
	s.running = true
	return out, nil
}

// Stop is idempotent: it is a no-op when already stopped. Stop is the
// only path that releases the device; a Source that is dropped while
// running is not stopped automatically.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.device.Stop()
	s.device.Uninit()
	s.device = nil
	s.running = false
	close(s.out)
	s.out = nil

	if err != nil {
		return fmt.Errorf("audiocapture: stop device: %w", err)
	}
	return nil
}

// IsRunning reports whether the device is currently capturing.
func (s *Source) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
