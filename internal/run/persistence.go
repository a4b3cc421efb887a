package run

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned by Persistence loads when nothing has been saved.
// A present but empty blob is not a miss.
var ErrNoData = errors.New("run: no data")

// Persistence stores the in-progress run and meta progression as opaque
// blobs. Writes are last-write-wins.
type Persistence interface {
	SaveRun(ctx context.Context, blob []byte) error
	LoadRun(ctx context.Context) ([]byte, error)
	ClearRun(ctx context.Context) error
	SaveMeta(ctx context.Context, blob []byte) error
	LoadMeta(ctx context.Context) ([]byte, error)
}

// Summary is the record of a finished run.
type Summary struct {
	ID         string
	Seed       string
	Modifier   string
	Victory    bool
	Floor      int
	Reward     int
	Deck       []string
	Relics     []string
	Token      string
	Ghost      string
	FinishedAt time.Time
}

// Recorder is implemented by stores that keep run history. The Manager
// records a Summary on completion when its Persistence also implements it.
type Recorder interface {
	RecordRun(ctx context.Context, s Summary) error
}
