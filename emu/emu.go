package emu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"invaders/emu/log"
	"invaders/emu/shared"
	"invaders/hw"
	"invaders/rom"
)

// FramePeriod is the wall time budget of a frame, truncated to the
// millisecond.
const FramePeriod = time.Duration(1000/hw.FrameHz) * time.Millisecond

// Emulator runs the board, one frame at a time, exchanging inputs and video
// memory with the presentation side through a shared.State.
type Emulator struct {
	Machine *hw.Machine
	State   *shared.State

	mixer *Mixer
}

// New powers up a board and loads rom in it.
func New(rom *rom.Rom, cfg Config, state *shared.State) (*Emulator, error) {
	mixer := newMixer(nopAudio{})
	m := hw.NewMachine(hw.Config{
		ProtectROM:    cfg.Emulation.ProtectROM,
		StrictOpcodes: cfg.Emulation.StrictOpcodes,
		DIP:           cfg.DIP,
		Sound:         mixer,
	})
	if err := m.LoadImage(rom.Data, 0); err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}
	state.InitInputs(m)

	log.ModEmu.InfoZ("Power up").
		String("rom", rom.Name).
		Int("size", len(rom.Data)).
		Hex8("dip", cfg.DIP.Bits()).
		End()

	return &Emulator{
		Machine: m,
		State:   state,
		mixer:   mixer,
	}, nil
}

// RunOneFrame runs the board for one frame and publishes its video memory.
// A requested reset is performed first, even while paused. While paused, it
// returns 0 without advancing emulation.
func (e *Emulator) RunOneFrame() (int64, error) {
	if e.State.TakeReset() {
		e.Machine.Reset()
	}
	if e.State.IsPaused() {
		return 0, nil
	}

	e.State.SyncInputs(e.Machine)
	cycles, err := e.Machine.RunOneFrame()
	if err != nil {
		return cycles, err
	}
	e.State.PublishFrame(e.Machine.VRAM())
	e.mixer.EndFrame()
	return cycles, nil
}

// Run is the emulation loop. Each frame is followed by a wait for the rest
// of the frame period, frames running late are not caught up. The effective
// clock rate is then published.
//
// Run returns nil when ctx is cancelled, or the error that stopped emulation.
func (e *Emulator) Run(ctx context.Context) error {
	timer := time.NewTimer(FramePeriod)
	timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		start := time.Now()
		cycles, err := e.RunOneFrame()
		if err != nil {
			log.ModEmu.ErrorZ("Emulation stopped").Error("err", err).End()
			return fmt.Errorf("emulation stopped: %w", err)
		}

		if elapsed := time.Since(start); elapsed < FramePeriod {
			timer.Reset(FramePeriod - elapsed)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}

		if us := time.Since(start).Microseconds(); us > 0 {
			e.State.SetMeasuredClockMHz(float64(cycles) / float64(us))
		}
	}
}

var errQuit = errors.New("quit")

// Launch opens the window and the audio device, then runs the emulation
// loop and the presentation loop until the user quits, ctx is cancelled or
// emulation fails. It must be called from sdl.Main.
func Launch(ctx context.Context, rom *rom.Rom, cfg Config) error {
	state := shared.NewState()
	emulator, err := New(rom, cfg, state)
	if err != nil {
		return err
	}

	if cfg.Audio.DisableAudio {
		log.ModEmu.WarnZ("Audio disabled").End()
	} else {
		dev, err := openAudio()
		if err != nil {
			log.ModEmu.WarnZ("Audio unavailable").Error("err", err).End()
		} else {
			defer dev.Close()
			emulator.mixer.out = dev
			log.ModEmu.InfoZ("Audio enabled").String("samples", cfg.Audio.SamplesDir).End()
		}
	}

	if cfg.Audio.RecordPath != "" {
		rec, err := newWavRecorder(cfg.Audio.RecordPath, emulator.mixer.out)
		if err != nil {
			return fmt.Errorf("audio recording: %w", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.ModSound.WarnZ("Failed to finalize audio recording").Error("err", err).End()
			}
		}()
		emulator.mixer.out = rec
		log.ModSound.InfoZ("Recording audio").String("path", cfg.Audio.RecordPath).End()
	}

	if !cfg.Audio.DisableAudio || cfg.Audio.RecordPath != "" {
		emulator.mixer.LoadSamples(cfg.Audio.SamplesDir)
	}

	win, err := newWindow(windowConfig{
		title:        title(0, false),
		texw:         hw.ScreenWidth,
		texh:         hw.ScreenHeight,
		scale:        cfg.Video.Scale,
		monitor:      cfg.Video.Monitor,
		disableVSync: cfg.Video.DisableVSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	kb := newKeyboard(cfg.Input, state)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return emulator.Run(ctx)
	})
	g.Go(func() error {
		return present(ctx, win, kb, state, cfg.Video.Overlay)
	})

	err = g.Wait()
	log.ModEmu.InfoZ("Emulation loop exited").Int64("frames", state.Frames()).End()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

// present is the presentation loop. It handles user input and draws the
// last published frame, at the frame rate.
func present(ctx context.Context, win *window, kb *keyboard, state *shared.State, overlay bool) error {
	const titlePeriod = 500 * time.Millisecond

	frame := hw.NewFrame()
	vram := make([]byte, hw.VRAMSize)

	ticker := time.NewTicker(time.Second / hw.FrameHz)
	defer ticker.Stop()

	lastTitle := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		quit := false
		sdl.Do(func() {
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				if we, ok := event.(*sdl.WindowEvent); ok && we.Event == sdl.WINDOWEVENT_RESIZED {
					win.resize(we.Data1, we.Data2)
					continue
				}
				if kb.handleEvent(event) {
					quit = true
				}
			}
		})
		if quit {
			return errQuit
		}

		state.CopyFramebuffer(vram)
		hw.Rasterize(frame, vram, overlay)
		win.render(frame)

		if time.Since(lastTitle) > titlePeriod {
			win.setTitle(title(state.MeasuredClockMHz(), state.IsPaused()))
			lastTitle = time.Now()
		}
	}
}

func title(mhz float64, paused bool) string {
	s := fmt.Sprintf("Space Invaders - %.2f MHz", mhz)
	if paused {
		s += " - Paused"
	}
	return s
}
