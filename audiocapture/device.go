// Package audiocapture implements the audio input side of the
// pipeline: device enumeration and probing (C1) and the capture
// source that delivers interleaved float PCM frames from one open
// input device (C2).
//
// It is backed by miniaudio through github.com/gen2brain/malgo, which
// gives device enumeration and capture on Windows/macOS/Linux without
// the platform-specific cgo split the teacher repo needed for
// ScreenCaptureKit (system audio capture is macOS-only; microphone
// capture through miniaudio is not).
package audiocapture

import (
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
)

// candidateSampleRates is the standard set probe tries, per §4.1.
var candidateSampleRates = []int{8000, 16000, 22050, 32000, 44100, 48000, 96000}

// ErrDeviceNotFound is returned when an id does not match any live
// input device.
type ErrDeviceNotFound struct {
	ID string
}

func (e *ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("audiocapture: device not found: %s", e.ID)
}

// Device describes one input device as reported by the OS.
type Device struct {
	ID             string
	DisplayName    string
	IsDefault      bool
	SupportedRates []int
}

// StreamConfig is the result of Probe: the input configuration a
// capture source should open for a given device.
type StreamConfig struct {
	DeviceID       string
	SupportedRates []int
}

// Enumerator lists and probes input devices through a shared miniaudio
// context. Callers should keep one Enumerator alive for the process
// lifetime and Close it on shutdown.
type Enumerator struct {
	ctx *malgo.AllocatedContext
}

// NewEnumerator allocates the miniaudio context backing enumeration and
// probing.
func NewEnumerator() (*Enumerator, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("audiocapture: init context: %w", err)
	}
	return &Enumerator{ctx: ctx}, nil
}

// Context returns the miniaudio context backing this Enumerator, for
// constructing audiocapture.Source/audiopipeline.Pipeline instances
// that share it.
func (e *Enumerator) Context() *malgo.AllocatedContext {
	return e.ctx
}

// Close releases the miniaudio context.
func (e *Enumerator) Close() error {
	if e.ctx == nil {
		return nil
	}
	return e.ctx.Uninit()
}

// ListInputs enumerates every live capture device.
func (e *Enumerator) ListInputs() ([]Device, error) {
	infos, err := e.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("audiocapture: enumerate devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		id := info.ID.String()
		rates, err := e.probeRates(id, info.ID)
		if err != nil {
			// A single misbehaving device should not hide the rest.
			rates = nil
		}
		devices = append(devices, Device{
			ID:             id,
			DisplayName:    info.Name(),
			IsDefault:      info.IsDefault != 0,
			SupportedRates: rates,
		})
	}
	return devices, nil
}

// DefaultInput resolves the device the OS reports as default.
func (e *Enumerator) DefaultInput() (Device, error) {
	devices, err := e.ListInputs()
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if d.IsDefault {
			return d, nil
		}
	}
	if len(devices) > 0 {
		return devices[0], nil
	}
	return Device{}, errors.New("audiocapture: no input devices available")
}

// Probe reports the StreamConfig (supported sample rates) for a given
// device id.
func (e *Enumerator) Probe(deviceID string) (StreamConfig, error) {
	infos, err := e.ctx.Devices(malgo.Capture)
	if err != nil {
		return StreamConfig{}, fmt.Errorf("audiocapture: enumerate devices: %w", err)
	}
	for _, info := range infos {
		if info.ID.String() != deviceID {
			continue
		}
		rates, err := e.probeRates(deviceID, info.ID)
		if err != nil {
			return StreamConfig{}, err
		}
		return StreamConfig{DeviceID: deviceID, SupportedRates: rates}, nil
	}
	return StreamConfig{}, &ErrDeviceNotFound{ID: deviceID}
}

// probeRates tries the standard candidate sample rates against a
// device's full capability info and returns only the ones it reports
// as supported.
func (e *Enumerator) probeRates(deviceID string, id malgo.DeviceID) ([]int, error) {
	full, err := e.ctx.DeviceInfo(malgo.Capture, id, malgo.Shared)
	if err != nil {
		return nil, fmt.Errorf("audiocapture: probe %s: %w", deviceID, err)
	}

	var supported []int
	for _, rate := range candidateSampleRates {
		for _, df := range full.DataFormats {
			if uint32(rate) >= df.SampleRateMin && uint32(rate) <= df.SampleRateMax {
				supported = append(supported, rate)
				break
			}
		}
	}
	return supported, nil
}
