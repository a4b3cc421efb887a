// Package share encodes finished runs into tokens that fit in a URL
// fragment, so a seed and deck or a whole ghost log can be passed around
// as a link.
package share

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/vovakirdan/stardust/internal/modifier"
	"github.com/vovakirdan/stardust/internal/state"
)

// RunToken is the shareable summary of a run.
type RunToken struct {
	Seed     string             `json:"seed"`
	Modifier *modifier.Modifier `json:"modifier"`
	Deck     []string           `json:"deck"`
}

// EncodeRun returns base64 JSON of t with the trailing padding removed.
func EncodeRun(t RunToken) (string, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(base64.StdEncoding.EncodeToString(payload), "="), nil
}

// DecodeRun reverses EncodeRun. Padding is optional and the URL-safe
// alphabet is accepted. It reports false for anything malformed, including
// a token without a seed.
func DecodeRun(token string) (*RunToken, bool) {
	payload, ok := decode(token)
	if !ok {
		return nil, false
	}
	var t RunToken
	if err := json.Unmarshal(payload, &t); err != nil || t.Seed == "" {
		return nil, false
	}
	return &t, true
}

// EncodeGhost returns base64 JSON of a ghost log.
func EncodeGhost(log []state.LogEntry) (string, error) {
	if log == nil {
		log = []state.LogEntry{}
	}
	payload, err := json.Marshal(log)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeGhost reverses EncodeGhost. Malformed input yields an empty log.
func DecodeGhost(token string) []state.LogEntry {
	payload, ok := decode(token)
	if !ok {
		return []state.LogEntry{}
	}
	var log []state.LogEntry
	if err := json.Unmarshal(payload, &log); err != nil || log == nil {
		return []state.LogEntry{}
	}
	return log
}

func decode(token string) ([]byte, bool) {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	if token == "" {
		return nil, false
	}
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.RawURLEncoding} {
		if payload, err := enc.DecodeString(token); err == nil {
			return payload, true
		}
	}
	return nil, false
}

// Fragment holds the tokens found in a link fragment.
type Fragment struct {
	Run   string
	Ghost string
}

// ParseFragment pulls run= and ghost= tokens out of a URL fragment such as
// "#run=abc&ghost=def". A full URL is accepted; everything up to '#' is
// skipped.
func ParseFragment(s string) Fragment {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[i+1:]
	}

	var f Fragment
	for part := range strings.SplitSeq(s, "&") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch key {
		case "run":
			f.Run = value
		case "ghost":
			f.Ghost = value
		}
	}
	return f
}

// Fragment formats tokens back into a fragment without the leading '#'.
func (f Fragment) String() string {
	var parts []string
	if f.Run != "" {
		parts = append(parts, "run="+f.Run)
	}
	if f.Ghost != "" {
		parts = append(parts, "ghost="+f.Ghost)
	}
	return strings.Join(parts, "&")
}
