package hw

import "invaders/hw/hwio"

// Sound identifies one of the board sound effects. Values match the usual
// numbering of the sample files (0.wav, 1.wav, ...).
type Sound uint8

const (
	SoundUFO          Sound = iota // loops while its port bit is held
	SoundShot                      // player shot
	SoundPlayerDeath               // player explosion
	SoundInvaderDeath              // invader explosion
	SoundFleet1                    // fleet movement, 4 notes
	SoundFleet2                    //
	SoundFleet3                    //
	SoundFleet4                    //
	SoundUFOHit                    // UFO explosion
	SoundExtendedPlay              // extra life

	NumSounds
)

var soundNames = [NumSounds]string{
	"ufo", "shot", "player-death", "invader-death",
	"fleet1", "fleet2", "fleet3", "fleet4",
	"ufo-hit", "extended-play",
}

func (s Sound) String() string {
	if s >= NumSounds {
		return "none"
	}
	return soundNames[s]
}

// Looping reports whether a sound plays for as long as its trigger is held.
func (s Sound) Looping() bool { return s == SoundUFO }

// SoundSink receives the sound events triggered by the game.
type SoundSink interface {
	Start(Sound)
	Stop(Sound)
}

type nopSoundSink struct{}

func (nopSoundSink) Start(Sound) {}
func (nopSoundSink) Stop(Sound)  {}

// bits of output port 3.
var port3Sounds = [8]Sound{
	0: SoundUFO,
	1: SoundShot,
	2: SoundPlayerDeath,
	3: SoundInvaderDeath,
	4: SoundExtendedPlay,
	5: NumSounds, // amplifier enable
	6: NumSounds,
	7: NumSounds,
}

// bits of output port 5.
var port5Sounds = [8]Sound{
	0: SoundFleet1,
	1: SoundFleet2,
	2: SoundFleet3,
	3: SoundFleet4,
	4: SoundUFOHit,
	5: NumSounds,
	6: NumSounds,
	7: NumSounds,
}

// dispatchSounds sends start/stop events for the bits of a sound port that
// changed between old and cur.
func dispatchSounds(sink SoundSink, table *[8]Sound, old, cur uint8) {
	rising, falling := hwio.Rising(old, cur), hwio.Falling(old, cur)
	for i := range uint(8) {
		switch {
		case table[i] == NumSounds:
		case hwio.GetBit8(rising, i):
			sink.Start(table[i])
		case hwio.GetBit8(falling, i):
			sink.Stop(table[i])
		}
	}
}
