// Package tape persists sequences as an ordered log of keyframe records.
// A tape round-trips to the same flattened tick stream; keyframe
// boundaries may be re-coalesced on load.
package tape

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/younwookim/dstas/internal/domain/input"
)

// Version identifies the tape format.
const Version = "1.0"

// Record encodes one keyframe: button flags, stick axes, trigger values
// and the hold duration in logical frames.
type Record struct {
	Btn uint16  `json:"btn,omitempty"` // button flags
	LX  float64 `json:"lx,omitempty"`  // left stick
	LY  float64 `json:"ly,omitempty"`
	RX  float64 `json:"rx,omitempty"` // right stick
	RY  float64 `json:"ry,omitempty"`
	LT  float64 `json:"lt,omitempty"` // triggers
	RT  float64 `json:"rt,omitempty"`
	D   int     `json:"d"` // duration in frames
}

// Tape is the on-disk envelope for a recorded or composed sequence.
type Tape struct {
	Version   string   `json:"version"`
	CreatedAt string   `json:"createdAt"`
	Frames    []Record `json:"frames"`
}

// FromSequence converts a sequence to its tape representation.
func FromSequence(seq input.Sequence) Tape {
	t := Tape{
		Version:   Version,
		CreatedAt: time.Now().Format(time.RFC3339),
		Frames:    make([]Record, 0, seq.Len()),
	}
	for _, k := range seq.Keyframes() {
		t.Frames = append(t.Frames, Record{
			Btn: uint16(k.State.Buttons),
			LX:  k.State.LX,
			LY:  k.State.LY,
			RX:  k.State.RX,
			RY:  k.State.RY,
			LT:  k.State.LT,
			RT:  k.State.RT,
			D:   k.Frames(),
		})
	}
	return t
}

// Sequence rebuilds the recorded sequence, re-coalescing adjacent
// identical records.
func (t Tape) Sequence() input.Sequence {
	parts := make([]input.Playable, 0, len(t.Frames))
	for _, r := range t.Frames {
		st := input.State{
			Buttons: input.Button(r.Btn),
			LX:      r.LX, LY: r.LY,
			RX: r.RX, RY: r.RY,
			LT: r.LT, RT: r.RT,
		}
		parts = append(parts, input.NewKeyframe(st, r.D))
	}
	return input.NewSequence(parts...).Coalesce()
}

// Save writes the sequence to w as an indented JSON tape.
func Save(w io.Writer, seq input.Sequence) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(FromSequence(seq)); err != nil {
		return fmt.Errorf("failed to encode tape: %w", err)
	}
	return nil
}

// Load reads a tape from r and rebuilds its sequence.
func Load(r io.Reader) (input.Sequence, error) {
	var t Tape
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&t); err != nil {
		return input.Sequence{}, fmt.Errorf("failed to decode tape: %w", err)
	}
	if t.Version != Version {
		return input.Sequence{}, fmt.Errorf("unsupported tape version %q", t.Version)
	}
	return t.Sequence(), nil
}

// SaveFile writes the sequence to a tape file.
func SaveFile(filename string, seq input.Sequence) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Save(file, seq)
}

// LoadFile reads a sequence from a tape file.
func LoadFile(filename string) (input.Sequence, error) {
	file, err := os.Open(filename)
	if err != nil {
		return input.Sequence{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Load(file)
}

// GenerateFilename creates a tape filename based on the current time.
func GenerateFilename() string {
	return fmt.Sprintf("tape_%s.json", time.Now().Format("20060102_150405"))
}
