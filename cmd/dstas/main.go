package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/younwookim/dstas/internal/application/tape"
	"github.com/younwookim/dstas/internal/application/tas"
	"github.com/younwookim/dstas/internal/infrastructure/config"
	"github.com/younwookim/dstas/internal/infrastructure/memhook"
)

func main() {
	playFlag := flag.String("play", "", "Play a tape file against the game (e.g., -play speedrun.json)")
	recordFlag := flag.Bool("record", false, "Record controller input into a tape file")
	outFlag := flag.String("out", "", "Output tape filename for -record (default: timestamped)")
	delayFlag := flag.Int("delay", 5, "Seconds to wait before playback starts")
	noWaitFlag := flag.Bool("no-igt-wait", false, "Apply the first input without waiting for a clock tick")
	displayFlag := flag.Bool("display", false, "Log each press as it is applied")
	anyInputFlag := flag.Bool("any-input", false, "Arm the recording on any input, sticks included")
	probeFlag := flag.Bool("probe", false, "Print the in-game timer and frame counter once a second")
	configFlag := flag.String("config", "", "Path to a config file (default: built-in values)")
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		loader := config.NewLoader(".")
		var err error
		cfg, err = loader.Load(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hook, err := memhook.Attach(cfg.Hook.WindowTitle)
	if err != nil {
		log.Fatalf("Failed to attach to the game: %v", err)
	}
	defer hook.Close()

	if *probeFlag {
		if err := probe(ctx, hook); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Probe failed: %v", err)
		}
		return
	}

	ts := tas.New(hook.Clock(), hook, hook, cfg)

	switch {
	case *playFlag != "":
		seq, err := ts.Load(*playFlag)
		if err != nil {
			log.Fatalf("Failed to load tape: %v", err)
		}
		err = ts.Playback(ctx, seq, tas.RunOptions{
			StartDelay:    time.Duration(*delayFlag) * time.Second,
			NoInitialWait: *noWaitFlag,
			Display:       *displayFlag,
		})
		if err != nil {
			log.Fatalf("Playback failed: %v", err)
		}

	case *recordFlag:
		seq, err := ts.Record(ctx, tas.RecordOptions{
			StartDelay:    time.Duration(*delayFlag) * time.Second,
			ArmOnAnyInput: *anyInputFlag,
		})
		if err != nil {
			log.Fatalf("Recording failed: %v", err)
		}
		filename := *outFlag
		if filename == "" {
			filename = tape.GenerateFilename()
		}
		if err := ts.Save(seq, filename); err != nil {
			log.Fatalf("Failed to save tape: %v", err)
		}
		log.Printf("Tape saved: %s", filename)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// probe watches the game's counters, useful for checking the hook found
// the right addresses before trusting it with a run.
func probe(ctx context.Context, hook *memhook.Hook) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		igt, err := hook.IGT()
		if err != nil {
			return err
		}
		frames, err := hook.FrameCount()
		if err != nil {
			return err
		}
		log.Printf("igt=%dms frames=%d", igt, frames)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
