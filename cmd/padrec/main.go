package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/dstas/internal/application/state"
	"github.com/younwookim/dstas/internal/application/tape"
	"github.com/younwookim/dstas/internal/domain/input"
	"github.com/younwookim/dstas/internal/infrastructure/gamepad"
)

const (
	screenW = 320
	screenH = 120
	// Matches the frame rate the playback engine targets.
	framerate = 30
)

// stopCombo ends the recording; the chord itself is not recorded.
const stopCombo = input.Start | input.Select

// armButtons are the presses that start the capture.
const armButtons = input.Start | input.Select | input.A | input.B | input.X | input.Y

var errDone = errors.New("recording finished")

// App is the pad recorder: it samples the controller once per tick and
// turns what it sees into a tape. Unlike the memory-hooked recorder this
// one ticks on the render loop, so it is useful for drafting sequences
// without the game running.
type App struct {
	source   *gamepad.Source
	state    state.SessionState
	states   []input.State
	last     input.State
	filename string
}

// NewApp creates the recorder app writing to filename.
func NewApp(filename string) *App {
	return &App{
		source:   gamepad.New(),
		state:    state.StateArmed,
		filename: filename,
	}
}

// Update samples the pad once per tick.
func (a *App) Update() error {
	s, err := a.source.Sample()
	if errors.Is(err, gamepad.ErrNoGamepad) {
		a.last = input.Neutral
		return nil
	}
	if err != nil {
		return fmt.Errorf("sample gamepad: %w", err)
	}
	a.last = s

	switch a.state {
	case state.StateArmed:
		if s.Buttons&armButtons == 0 {
			return nil
		}
		a.state = state.StateRecording
		fallthrough
	case state.StateRecording:
		if s.Buttons.Has(stopCombo) {
			a.state = state.StateDone
			return a.save()
		}
		a.states = append(a.states, s)
	}
	return nil
}

func (a *App) save() error {
	seq := input.FromStates(a.states)
	if err := tape.SaveFile(a.filename, seq); err != nil {
		return fmt.Errorf("save tape: %w", err)
	}
	log.Printf("Tape saved: %s (%d keyframes, %d frames)", a.filename, seq.Len(), seq.Frames())
	return errDone
}

// Draw shows the session state and the live sample.
func (a *App) Draw(screen *ebiten.Image) {
	text := fmt.Sprintf("%s\nframes: %d\n%s\n\nstart+select to finish", a.state, len(a.states), a.last)
	ebitenutil.DebugPrint(screen, text)
}

// Layout returns the window's logical dimensions.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

func main() {
	outFlag := flag.String("out", "", "Output tape filename (default: timestamped)")
	flag.Parse()

	filename := *outFlag
	if filename == "" {
		filename = tape.GenerateFilename()
	}

	ebiten.SetWindowSize(screenW*2, screenH*2)
	ebiten.SetWindowTitle("Pad Recorder")
	ebiten.SetTPS(framerate)

	if err := ebiten.RunGame(NewApp(filename)); err != nil && !errors.Is(err, errDone) {
		log.Fatal(err)
	}
}
