package emu

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arl/blip"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/veandco/go-sdl2/sdl"

	"invaders/emu/log"
	"invaders/hw"
)

const (
	SampleRate      = 44100
	samplesPerFrame = SampleRate / hw.FrameHz

	// Time base of the mixer. Sample rates found in sound effects files
	// (11025, 22050, 44100Hz) are all a whole number of clocks.
	clockRate   = SampleRate * hw.FrameHz
	frameClocks = clockRate / hw.FrameHz

	// Don't let more than this number of bytes accumulate in the audio
	// device queue, so the latency stays low when emulation runs faster than
	// the audio device consumes.
	maxQueuedBytes = samplesPerFrame * 2 * 4
)

// audioOut is where the mixer sends its audio frames, 16-bit signed little
// endian mono samples.
type audioOut interface {
	Queue(buf []byte) error
}

type voice struct {
	sound hw.Sound
	pos   int     // next sample index
	clock float64 // time of the next sample, relative to the frame start
	level int32   // current output level
}

// Mixer plays the sound effects samples in response to the sound events of
// the board. It implements hw.SoundSink.
type Mixer struct {
	out     audioOut
	samples [hw.NumSounds]sample
	voices  []voice

	// Output level change to apply at the start of next frame, for the
	// voices stopped during the current one.
	pending int32

	buf *blip.Buffer
	pcm [samplesPerFrame * 2]int16
	raw [samplesPerFrame * 4]byte
}

type sample struct {
	data   []float32 // normalized to [-1, 1]
	period float64   // clocks per source sample
}

func newMixer(out audioOut) *Mixer {
	m := &Mixer{
		out: out,
		buf: blip.NewBuffer(samplesPerFrame * 2),
	}
	m.buf.SetRates(clockRate, SampleRate)
	return m
}

// LoadSamples loads <dir>/N.wav, or <dir>/N.mp3 if there's no such file,
// for each sound N. Missing or invalid files are reported and skipped, the
// corresponding sound staying silent.
func (m *Mixer) LoadSamples(dir string) {
	for i := range hw.NumSounds {
		path := filepath.Join(dir, strconv.Itoa(int(i))+".wav")
		if mp3path := strings.TrimSuffix(path, ".wav") + ".mp3"; !fileExists(path) && fileExists(mp3path) {
			path = mp3path
		}
		smp, err := loadSample(path)
		if err != nil {
			log.ModSound.WarnZ("Failed to load sound sample").
				String("path", path).
				Error("err", err).
				End()
			continue
		}
		m.samples[i] = smp
		log.ModSound.DebugZ("sample loaded").
			Stringer("sound", i).
			String("path", path).
			Int("len", len(smp.data)).
			End()
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadSample(path string) (sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return sample{}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return decodeMP3(f)
	}
	return decodeWav(f)
}

func decodeWav(r io.ReadSeeker) (sample, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return sample{}, fmt.Errorf("wav: not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return sample{}, fmt.Errorf("wav: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate == 0 {
		return sample{}, fmt.Errorf("wav: unknown sample rate")
	}

	return sample{
		data:   monoFloats(buf),
		period: clockRate / float64(buf.Format.SampleRate),
	}, nil
}

// decodeMP3 decodes the left channel of an mp3 stream. The decoder output is
// always 16-bit little endian stereo.
func decodeMP3(r io.Reader) (sample, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return sample{}, fmt.Errorf("mp3: %w", err)
	}
	if dec.SampleRate() == 0 {
		return sample{}, fmt.Errorf("mp3: unknown sample rate")
	}

	var data []float32
	chunk := make([]byte, 4096)
	for {
		n, err := io.ReadFull(dec, chunk)
		for i := 0; i+1 < n; i += 4 {
			v := int16(binary.LittleEndian.Uint16(chunk[i:]))
			data = append(data, float32(v)/(1<<15))
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return sample{}, fmt.Errorf("mp3: %w", err)
		}
	}

	return sample{
		data:   data,
		period: clockRate / float64(dec.SampleRate()),
	}, nil
}

// monoFloats returns the first channel of buf, normalized.
func monoFloats(buf *audio.IntBuffer) []float32 {
	nchans := max(buf.Format.NumChannels, 1)
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := float32(int(1) << (depth - 1))

	out := make([]float32, 0, len(buf.Data)/nchans)
	for i := 0; i < len(buf.Data); i += nchans {
		v := buf.Data[i]
		if depth == 8 {
			// 8-bit wav samples are unsigned.
			v -= 128
		}
		out = append(out, float32(v)/scale)
	}
	return out
}

// Start implements hw.SoundSink.
func (m *Mixer) Start(s hw.Sound) {
	if len(m.samples[s].data) == 0 {
		return
	}
	// restart if already playing
	for i := range m.voices {
		if m.voices[i].sound == s {
			m.voices[i].pos = 0
			return
		}
	}
	m.voices = append(m.voices, voice{sound: s})
	log.ModSound.DebugZ("start").Stringer("sound", s).End()
}

// Stop implements hw.SoundSink. Only looping sounds are cut, the others play
// until their end.
func (m *Mixer) Stop(s hw.Sound) {
	if !s.Looping() {
		return
	}
	for _, v := range m.voices {
		if v.sound == s {
			m.pending -= v.level
		}
	}
	m.voices = removeVoice(m.voices, s)
	log.ModSound.DebugZ("stop").Stringer("sound", s).End()
}

func removeVoice(voices []voice, s hw.Sound) []voice {
	out := voices[:0]
	for _, v := range voices {
		if v.sound != s {
			out = append(out, v)
		}
	}
	return out
}

// Playing reports whether sound s is currently playing.
func (m *Mixer) Playing(s hw.Sound) bool {
	for _, v := range m.voices {
		if v.sound == s {
			return true
		}
	}
	return false
}

// EndFrame mixes one frame worth of audio and sends it to the output.
func (m *Mixer) EndFrame() {
	if m.pending != 0 {
		m.buf.AddDelta(0, m.pending)
		m.pending = 0
	}

	active := m.voices[:0]
	for _, v := range m.voices {
		if m.play(&v) {
			active = append(active, v)
		}
	}
	m.voices = active

	m.buf.EndFrame(frameClocks)
	n := m.buf.ReadSamples(m.pcm[:], len(m.pcm), blip.Mono)
	for i, s := range m.pcm[:n] {
		binary.LittleEndian.PutUint16(m.raw[i*2:], uint16(s))
	}

	if err := m.out.Queue(m.raw[:n*2]); err != nil {
		log.ModSound.DebugZ("failed to queue audio buffer").Error("err", err).End()
	}
}

// play adds to the blip buffer the level changes of v during the current
// frame. It reports whether v is still playing at the end of the frame.
func (m *Mixer) play(v *voice) bool {
	smp := &m.samples[v.sound]
	for ; v.clock < frameClocks; v.clock += smp.period {
		if v.pos >= len(smp.data) {
			if !v.sound.Looping() {
				m.buf.AddDelta(uint64(v.clock), -v.level)
				return false
			}
			v.pos = 0
		}
		level := int32(smp.data[v.pos] * math.MaxInt16 / 2)
		if delta := level - v.level; delta != 0 {
			m.buf.AddDelta(uint64(v.clock), delta)
		}
		v.level = level
		v.pos++
	}
	v.clock -= frameClocks
	return true
}

type sdlAudio struct {
	id sdl.AudioDeviceID
}

func openAudio() (*sdlAudio, error) {
	var (
		dev *sdlAudio
		err error
	)
	sdl.Do(func() {
		if err = sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
			err = fmt.Errorf("failed to initialize SDL audio: %s", err)
			return
		}
		spec := &sdl.AudioSpec{
			Freq:     SampleRate,
			Format:   sdl.AUDIO_S16LSB,
			Channels: 1,
			Samples:  1024,
		}
		var id sdl.AudioDeviceID
		if id, err = sdl.OpenAudioDevice("", false, spec, nil, 0); err != nil {
			err = fmt.Errorf("failed to open audio device: %s", err)
			return
		}
		sdl.PauseAudioDevice(id, false)
		dev = &sdlAudio{id: id}
	})
	return dev, err
}

func (a *sdlAudio) Queue(buf []byte) error {
	if sdl.GetQueuedAudioSize(a.id) > maxQueuedBytes {
		return nil
	}
	// SDL copies the buffer.
	return sdl.QueueAudio(a.id, buf)
}

func (a *sdlAudio) Close() {
	sdl.Do(func() { sdl.CloseAudioDevice(a.id) })
}

// nopAudio discards audio.
type nopAudio struct{}

func (nopAudio) Queue([]byte) error { return nil }

// wavRecorder is an audioOut writing the audio frames to a wav file, and
// forwarding them to another output.
type wavRecorder struct {
	next audioOut
	f    *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

func newWavRecorder(path string, next audioOut) (*wavRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &wavRecorder{
		next: next,
		f:    f,
		enc:  wav.NewEncoder(f, SampleRate, 16, 1, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
			Data:           make([]int, samplesPerFrame*2),
			SourceBitDepth: 16,
		},
	}, nil
}

func (r *wavRecorder) Queue(buf []byte) error {
	r.buf.Data = r.buf.Data[:len(buf)/2]
	for i := range r.buf.Data {
		r.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(buf[i*2:])))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wav recorder: %w", err)
	}
	return r.next.Queue(buf)
}

// Close finalizes the wav file.
func (r *wavRecorder) Close() error {
	if err := r.enc.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}
