package share

import (
	"encoding/base64"
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/stardust/internal/modifier"
	"github.com/vovakirdan/stardust/internal/state"
)

func TestRunTokenRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		token RunToken
	}{
		{
			name:  "daily",
			token: RunToken{Seed: "1421808134", Modifier: &modifier.Modifier{ID: "daily", HandBonus: 1}, Deck: state.StartingDeck(1)},
		},
		{
			name:  "no modifier",
			token: RunToken{Seed: "abc", Deck: []string{"strike", "meteor+"}},
		},
		{
			name:  "unicode seed",
			token: RunToken{Seed: "звезда ✦", Deck: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := EncodeRun(tt.token)
			if err != nil {
				t.Fatalf("EncodeRun: %v", err)
			}
			if strings.HasSuffix(enc, "=") {
				t.Errorf("token %q keeps padding", enc)
			}
			got, ok := DecodeRun(enc)
			if !ok {
				t.Fatalf("DecodeRun(%q) failed", enc)
			}
			if !reflect.DeepEqual(*got, tt.token) {
				t.Errorf("DecodeRun = %+v, want %+v", *got, tt.token)
			}
		})
	}
}

func TestEncodeRunPayload(t *testing.T) {
	enc, err := EncodeRun(RunToken{Seed: "s", Deck: []string{"nova"}})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.RawStdEncoding.DecodeString(enc)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"seed":"s","modifier":null,"deck":["nova"]}`; string(raw) != want {
		t.Errorf("payload = %s, want %s", raw, want)
	}
}

func TestDecodeRunAcceptsVariants(t *testing.T) {
	payload := []byte(`{"seed":"x?y>","modifier":{"id":"daily","handBonus":1},"deck":["a"]}`)
	for name, token := range map[string]string{
		"padded":   base64.StdEncoding.EncodeToString(payload),
		"url safe": base64.RawURLEncoding.EncodeToString(payload),
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := DecodeRun(token)
			if !ok || got.Seed != "x?y>" || got.Modifier == nil || got.Modifier.HandBonus != 1 {
				t.Errorf("DecodeRun = %+v, %v", got, ok)
			}
		})
	}
}

func TestDecodeRunMalformed(t *testing.T) {
	for _, token := range []string{
		"not-valid-base64!!",
		"",
		"====",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`["array"]`)),
		base64.StdEncoding.EncodeToString([]byte(`null`)),
		base64.StdEncoding.EncodeToString([]byte(`{}`)),
		base64.StdEncoding.EncodeToString([]byte(`{"seed":"","deck":["strike"]}`)),
	} {
		if got, ok := DecodeRun(token); ok || got != nil {
			t.Errorf("DecodeRun(%q) = %+v, %v; want nil, false", token, got, ok)
		}
	}
}

func TestGhostRoundTrip(t *testing.T) {
	log := []state.LogEntry{
		{T: 1760000000000, Action: "battle_start:void_drone"},
		{T: 1760000000500, Action: "card:strike"},
		{T: 1760000001000, Action: "enemy_intent:attack"},
	}
	enc, err := EncodeGhost(log)
	if err != nil {
		t.Fatal(err)
	}
	if got := DecodeGhost(enc); !reflect.DeepEqual(got, log) {
		t.Errorf("DecodeGhost = %+v", got)
	}

	raw, _ := base64.StdEncoding.DecodeString(enc)
	if !strings.Contains(string(raw), `"t":1760000000000,"action":"battle_start:void_drone"`) {
		t.Errorf("payload = %s", raw)
	}
}

func TestEncodeGhostNil(t *testing.T) {
	enc, err := EncodeGhost(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := DecodeGhost(enc); got == nil || len(got) != 0 {
		t.Errorf("DecodeGhost = %#v", got)
	}
}

func TestDecodeGhostMalformed(t *testing.T) {
	for _, token := range []string{"%%%", "", base64.StdEncoding.EncodeToString([]byte(`{"t":1}`))} {
		got := DecodeGhost(token)
		if got == nil || len(got) != 0 {
			t.Errorf("DecodeGhost(%q) = %#v, want empty", token, got)
		}
	}
}

func TestParseFragment(t *testing.T) {
	tests := []struct {
		in   string
		want Fragment
	}{
		{"#run=abc&ghost=def==", Fragment{Run: "abc", Ghost: "def=="}},
		{"https://stardust.example/play#ghost=g1", Fragment{Ghost: "g1"}},
		{"run=xyz", Fragment{Run: "xyz"}},
		{"#other=1&junk", Fragment{}},
		{"", Fragment{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFragment(tt.in); got != tt.want {
				t.Errorf("ParseFragment(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFragmentString(t *testing.T) {
	f := Fragment{Run: "a", Ghost: "b="}
	if got := f.String(); got != "run=a&ghost=b=" {
		t.Errorf("String() = %q", got)
	}
	if got := ParseFragment("#" + f.String()); got != f {
		t.Errorf("round trip = %+v", got)
	}
}
