// Package main provides the tunedeck entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunedeck/internal/app/filter"
	"github.com/osa030/tunedeck/internal/app/playback"
	"github.com/osa030/tunedeck/internal/app/player"
	"github.com/osa030/tunedeck/internal/infra/audio"
	"github.com/osa030/tunedeck/internal/infra/config"
	"github.com/osa030/tunedeck/internal/infra/logger"
	"github.com/osa030/tunedeck/internal/media"
	"github.com/osa030/tunedeck/internal/ui"
)

var (
	app        = kingpin.New("tunedeck", "Terminal playlist player")
	configPath = app.Flag("config", "Path to config file (defaults apply when missing)").Default("config/tunedeck.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: discard)").String()

	// play command (default)
	playCmd   = app.Command("play", "Start the player (default)").Default()
	playFiles = playCmd.Arg("files", "Audio files or directories to add to the playlist").Strings()

	// inspect command
	inspectCmd   = app.Command("inspect", "Show which files would be accepted and exit")
	inspectFiles = inspectCmd.Arg("files", "Files or directories to inspect").Required().Strings()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and whether the config enables them")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Load config
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if command == listFiltersCmd.FullCommand() {
		printFilters(cfg)
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: logger.OutputDiscard,
		Level:  cfg.Log.Level,
	}
	if cfg.Log.File != "" {
		loggerConfig.Output = cfg.Log.File
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if command == inspectCmd.FullCommand() && loggerConfig.Output == logger.OutputDiscard && *verbose {
		loggerConfig.Output = logger.OutputStderr
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	switch command {
	case inspectCmd.FullCommand():
		err = inspect(cfg, *inspectFiles)
	default:
		err = run(cfg, *playFiles)
	}
	if err != nil {
		zlog.Error().Msgf("tunedeck: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// run starts the player and blocks until the TUI exits. Using a separate
// function ensures defer statements run before the process exits.
func run(cfg *config.Config, files []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := media.NewRegistry()
	handle := audio.New(registry, audio.Config{
		SampleRate:       cfg.Audio.SampleRate,
		Buffer:           cfg.AudioBuffer(),
		ResampleQuality:  cfg.Audio.ResampleQuality,
		PositionInterval: cfg.PositionInterval(),
	})

	p, err := player.New(handle, registry, player.Config{
		Playback: playback.Config{PositionInterval: cfg.PositionInterval()},
		Filters:  cfg.FilterSettings(),
		ReadTags: !cfg.Library.SkipTags,
		Probe:    audio.Probe,
	})
	if err != nil {
		_ = handle.Close()
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			zlog.Error().Msgf("Failed to close player: %v", err)
		}
	}()

	files, err = media.ExpandPaths(files)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		result, err := p.AddFiles(ctx, files...)
		if err != nil {
			return errors.Wrap(err, "failed to add files")
		}
		zlog.Info().Msgf("Added %d files from the command line, rejected %d", len(result.Added), len(result.Rejected))
	}

	model := ui.NewModel(ctx, p, ui.Options{
		Title:      cfg.UI.Title,
		SeekStep:   cfg.SeekStep(),
		StartDir:   cfg.Library.StartDir,
		ShowHidden: cfg.Library.ShowHidden,
	})
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "ui error")
	}

	zlog.Info().Msg("Player stopped")
	return nil
}

// inspect prints the filter verdict for each file without playing anything.
func inspect(cfg *config.Config, files []string) error {
	chain, err := filter.NewChainFromSettings(cfg.FilterSettings())
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}
	chain.Bind(filter.Deps{Probe: audio.Probe})

	files, err = media.ExpandPaths(files)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rejected := 0
	for _, path := range files {
		f, err := media.Open(path)
		if err != nil {
			rejected++
			fmt.Printf("REJECT  %s: %v\n", path, err)
			continue
		}

		result := chain.Execute(ctx, f)
		if !result.Accepted {
			rejected++
			fmt.Printf("REJECT  %s [%s] %s (by %s)\n", f.Name, contentTypeOrNone(f.ContentType), result.Code, result.Filter)
			continue
		}

		line := fmt.Sprintf("ACCEPT  %s [%s]", f.Name, f.ContentType)
		if d, err := audio.Probe(ctx, f); err == nil {
			line += fmt.Sprintf(" %ds", int64(d/time.Second))
		} else if !audio.Supported(f.ContentType) {
			line += " (no decoder, will be marked unplayable)"
		}
		if tags := media.ReadTags(f.Path); !tags.IsEmpty() {
			line += fmt.Sprintf(" %q by %q", tags.Title, tags.Artist)
		}
		fmt.Println(line)
	}

	fmt.Printf("%d accepted, %d rejected\n", len(files)-rejected, rejected)
	return nil
}

// printFilters prints available filters and marks the ones the config enables.
func printFilters(cfg *config.Config) {
	fmt.Println("Available Filters:")
	registry := filter.GetRegistered()
	for _, name := range filter.Names() {
		f := registry[name]()
		mark := " "
		if name == filter.AudioContentTypeFilterName || cfg.IsFilterEnabled(name) {
			mark = "*"
		}
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("%s %-24s - %s [codes: %s]\n", mark, f.Name(), f.Description(), codes)
	}
	fmt.Println("(* enabled)")
}

func contentTypeOrNone(ct string) string {
	if ct == "" {
		return "none"
	}
	return ct
}
