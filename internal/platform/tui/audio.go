package tui

import (
	"io"
	"sync"

	"github.com/vovakirdan/stardust/internal/core"
)

// Bell plays hit cues as a terminal bell. Attack cues are silent; a bell per
// card would be noise. Muted settings or zero volume silence it.
type Bell struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

// NewBell returns a bell writing to w under settings.
func NewBell(w io.Writer, settings core.Settings) *Bell {
	return &Bell{w: w, quiet: settings.Muted || settings.Volume <= 0}
}

// Play implements core.Audio.
func (b *Bell) Play(cue core.Cue) {
	if b.quiet || cue != core.CueHit {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.w, "\a")
}
