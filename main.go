// ABOUTME: Entry point for the direct-to-device player
// ABOUTME: Decodes a file, opens the output device and plays it through a render session
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sendspin/deviceplayer/internal/config"
	"github.com/Sendspin/deviceplayer/internal/ui"
	"github.com/Sendspin/deviceplayer/internal/version"
	"github.com/Sendspin/deviceplayer/pkg/audio"
	"github.com/Sendspin/deviceplayer/pkg/audio/decode"
	"github.com/Sendspin/deviceplayer/pkg/audio/output"
	"github.com/Sendspin/deviceplayer/pkg/playback"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	configPath  = flag.String("config", "", "YAML config file")
	listDevices = flag.Bool("list-devices", false, "List output devices for the backend and exit")
	tone        = flag.Float64("tone", 0, "Play a sine test tone at this frequency (Hz) instead of a file")
	toneLength  = flag.Duration("tone-duration", 5*time.Second, "Length of the test tone")
	overrides   = config.RegisterFlags(flag.CommandLine)
)

const (
	toneSampleRate = 48000
	toneChannels   = 2
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Plays an audio file (%v) directly on an output device.\n\nFlags:\n", decode.Extensions())
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if *listDevices {
		if err := printDevices(cfg.Output.Backend); err != nil {
			log.Fatalf("Failed to list devices: %v", err)
		}
		return
	}

	if flag.NArg() < 1 && *tone <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := play(cfg, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Printf("Player error: %v", err)
		closeLog()
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file and explicit flags
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging tees logs to the configured file. In TUI mode logs go only
// to the file so they never draw over the screen.
func setupLogging(cfg *config.Config) (func(), error) {
	if cfg.Log.File == "" {
		if cfg.TUI {
			log.SetOutput(io.Discard)
		}
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	if cfg.TUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	return func() { _ = f.Close() }, nil
}

func printDevices(backend string) error {
	devices, err := output.List(backend)
	if err != nil {
		return err
	}

	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %-40s %s\n", marker, d.Name, d.ID)
	}
	return nil
}

// loadSource decodes path, or renders the test tone when -tone is set
func loadSource(path string) (*audio.Source, string, error) {
	if *tone > 0 {
		src, err := audio.NewTone(*tone, *toneLength, toneSampleRate, toneChannels)
		return src, fmt.Sprintf("%vHz test tone", *tone), err
	}

	src, err := decode.DecodeFile(path)
	return src, path, err
}

// play runs one source through a session until the user stops it
func play(cfg *config.Config, path string) error {
	log.Printf("Starting %s %s", version.Product, version.Version)

	src, path, err := loadSource(path)
	if err != nil {
		return err
	}

	dev, err := output.Open(cfg.OutputConfig(src.SampleRate, src.Channels))
	if err != nil {
		return fmt.Errorf("failed to open output device: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Printf("Error closing device: %v", err)
		}
	}()

	// Runs on the render thread; only a non-blocking send is allowed here
	depleted := make(chan struct{}, 1)
	session, err := playback.New(dev, playback.Options{
		OnDepleted: func() {
			select {
			case depleted <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Error closing session: %v", err)
		}
	}()

	if err := session.Load(src); err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}

	if cfg.TUI {
		return runTUI(session, dev, path, src, depleted)
	}
	return runLineRead(session, dev, path, src, depleted)
}

// runLineRead blocks until Enter or a signal, printing status as playback ends
func runLineRead(session *playback.Session, dev output.Device, path string, src *audio.Source, depleted <-chan struct{}) error {
	fmt.Printf("Playing %s (%v) on %s. Press Enter to stop.\n", path, src.Duration().Round(time.Second), dev.Name())

	lines := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		close(lines)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-depleted:
			fmt.Println("Playback finished. Press Enter to exit.")
			log.Printf("Session %s: source depleted", session.ID())
		case <-lines:
			return session.Stop()
		case <-sigChan:
			log.Printf("Shutdown signal received")
			return session.Stop()
		}
	}
}

// runTUI shows progress until the user quits
func runTUI(session *playback.Session, dev output.Device, path string, src *audio.Source, depleted <-chan struct{}) error {
	ctrl := ui.NewControl()
	prog := ui.Run(ctrl)

	format, _ := session.Format()
	go func() {
		prog.Send(ui.StatusMsg{
			File:       path,
			SampleRate: src.SampleRate,
			Channels:   src.Channels,
			Device:     dev.Name(),
			Format:     format.String(),
		})
		controlLoop(session, ctrl, depleted, prog.Send)
	}()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if session.State() == playback.StateStopped {
		return nil
	}
	return session.Stop()
}

// controlLoop applies TUI commands and pushes progress updates
func controlLoop(session *playback.Session, ctrl *ui.Control, depleted <-chan struct{}, send func(tea.Msg)) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	status := func(err error) {
		cursor, total := session.Position()
		send(ui.StatusMsg{State: session.State().String(), Cursor: cursor, Total: total, Err: err})
	}

	for {
		select {
		case <-ticker.C:
			status(nil)
		case <-depleted:
			log.Printf("Session %s: source depleted", session.ID())
			status(nil)
		case <-ctrl.Toggle:
			var err error
			if session.State() == playback.StateStopped {
				err = session.Start()
			} else {
				err = session.Stop()
			}
			status(err)
		case <-ctrl.Restart:
			status(session.Reset())
		case <-ctrl.Quit:
			return
		}
	}
}
