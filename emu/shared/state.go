// Package shared holds the emulation state shared between the emulator
// worker and the presentation side.
package shared

import (
	"errors"
	"fmt"
	"sync"

	"invaders/hw"
	"invaders/hw/hwio"
)

var ErrInvalidInput = errors.New("invalid input")

// State is the emulation state shared between the emulator worker and the
// presentation side. A single mutex guards all of it.
//
// The worker copies the input ports into the machine at the start of each
// frame and publishes a copy of the video memory at the end of it, so the
// machine itself is never accessed concurrently.
type State struct {
	mu sync.Mutex

	paused bool
	reset  bool     // reset requested
	inputs [3]uint8 // input ports, port 0 is constant
	mhz    float64
	frames int64
	vram   [hw.VRAMSize]byte
}

// NewState returns a State with the input ports at their power-up value.
func NewState() *State {
	s := &State{}
	s.inputs[0] = 0x0E
	s.inputs[1] = 0x08
	return s
}

func (s *State) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *State) Unpause() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// TogglePause flips the paused state and returns the new one.
func (s *State) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

func (s *State) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetInputBit sets or clears a bit of input port 1 or 2.
func (s *State) SetInputBit(port, bit int, on bool) error {
	if port < 1 || port > 2 || bit < 0 || bit > 7 {
		return fmt.Errorf("%w: port %d bit %d", ErrInvalidInput, port, bit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		hwio.SetBit8(&s.inputs[port], uint(bit))
	} else {
		hwio.ClearBit8(&s.inputs[port], uint(bit))
	}
	return nil
}

// SetButton presses or releases a cabinet button.
func (s *State) SetButton(b hw.Button, pressed bool) {
	port, bit := b.Port()
	// buttons are always wired to valid ports.
	_ = s.SetInputBit(int(port), int(bit), pressed)
}

// InputPort returns the current value of input port n, 0 for an invalid
// port.
func (s *State) InputPort(n int) uint8 {
	if n < 0 || n >= len(s.inputs) {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs[n]
}

func (s *State) SetMeasuredClockMHz(mhz float64) {
	s.mu.Lock()
	s.mhz = mhz
	s.mu.Unlock()
}

func (s *State) MeasuredClockMHz() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mhz
}

// FramebufferByte returns the byte at index i of the last published video
// memory, or 0 if i is out of range.
func (s *State) FramebufferByte(i int) uint8 {
	if i < 0 || i >= hw.VRAMSize {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vram[i]
}

// CopyFramebuffer copies the last published video memory into dst and
// returns the number of bytes copied.
func (s *State) CopyFramebuffer(dst []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copy(dst, s.vram[:])
}

// Frames returns the number of frames published so far.
func (s *State) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// RequestReset asks the worker to reset the machine before its next frame.
func (s *State) RequestReset() {
	s.mu.Lock()
	s.reset = true
	s.mu.Unlock()
}

// TakeReset reports whether a reset has been requested since the last call.
func (s *State) TakeReset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	reset := s.reset
	s.reset = false
	return reset
}

// SyncInputs copies the input ports into the machine.
func (s *State) SyncInputs(m *hw.Machine) {
	s.mu.Lock()
	in1, in2 := s.inputs[1], s.inputs[2]
	s.mu.Unlock()
	m.SetInputs(in1, in2)
}

// InitInputs sets the input ports from the machine's ones.
func (s *State) InitInputs(m *hw.Machine) {
	in1, in2 := m.Inputs()
	s.mu.Lock()
	s.inputs[1], s.inputs[2] = in1, in2
	s.mu.Unlock()
}

// PublishFrame stores a copy of the video memory and counts a frame.
func (s *State) PublishFrame(vram []byte) {
	s.mu.Lock()
	copy(s.vram[:], vram)
	s.frames++
	s.mu.Unlock()
}
