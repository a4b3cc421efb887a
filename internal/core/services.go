package core

import (
	"sync"
	"time"
)

// Cue is a named sound the engine asks the front-end to play.
type Cue string

const (
	CueAttack Cue = "attack"
	CueHit    Cue = "hit"
)

// Audio is a sink for sound cues. Implementations must not block.
type Audio interface {
	Play(cue Cue)
}

// NopAudio discards every cue.
type NopAudio struct{}

func (NopAudio) Play(Cue) {}

// CueRecorder remembers the cues it was asked to play. The TUI uses it to
// flash hit feedback; tests use it to assert on cues.
type CueRecorder struct {
	mu   sync.Mutex
	cues []Cue
}

func (r *CueRecorder) Play(cue Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, cue)
}

// Drain returns the recorded cues and forgets them.
func (r *CueRecorder) Drain() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.cues
	r.cues = nil
	return out
}

// Localizer resolves a text key, substituting {name} params.
type Localizer interface {
	T(key string, params map[string]any) string
}

// KeyLocalizer returns every key unchanged.
type KeyLocalizer struct{}

func (KeyLocalizer) T(key string, _ map[string]any) string { return key }

// Settings are the player-facing presentation options.
type Settings struct {
	Volume        float64
	Muted         bool
	ReducedMotion bool
	Language      string
}

// DefaultSettings returns settings for a fresh profile.
func DefaultSettings() Settings {
	return Settings{Volume: 0.7, Language: "en-US"}
}

// Services is the capability bundle handed to the engine and run layer.
// Nil fields are filled by WithDefaults.
type Services struct {
	Audio     Audio
	Localizer Localizer
	Settings  Settings
	Now       func() time.Time
}

// WithDefaults returns a copy with every nil capability replaced by a no-op.
func (s Services) WithDefaults() Services {
	if s.Audio == nil {
		s.Audio = NopAudio{}
	}
	if s.Localizer == nil {
		s.Localizer = KeyLocalizer{}
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Settings == (Settings{}) {
		s.Settings = DefaultSettings()
	}
	return s
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
