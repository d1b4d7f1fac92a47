package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/config"
	"github.com/sonicwave-radio/sonicwave/internal/player"
	"github.com/sonicwave-radio/sonicwave/internal/radiobrowser"
	"github.com/sonicwave-radio/sonicwave/internal/recommend"
	"github.com/sonicwave-radio/sonicwave/internal/ui"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	serverFlag  = flag.String("server", "", "Recommendation service base URL (AI prompts fall back to a default mix when unset)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n\n", config.AppName, config.AppVersion, config.AppDescription)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()

		statePath, err := config.StatePath()
		if err == nil {
			if _, statErr := os.Stat(statePath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nState file: %s\n", statePath)
			} else {
				fmt.Fprintf(os.Stderr, "\nState file will be created on first use.\n")
			}
		}
	}
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		fmt.Println(config.AppDescription)
		os.Exit(0)
	}

	if *debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)

		logPath := filepath.Join(os.TempDir(), "sonicwave-debug.log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
			logFile = os.Stderr
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
		fmt.Printf("Debug log: %s\n", logPath)
		log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)
	} else {
		// Avoid TUI corruption by only logging errors to /dev/null
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0644)
		if err == nil {
			log.Logger = log.Output(logFile)
		}
	}

	statePath, err := config.StatePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not resolve state path: %v\n", err)
		os.Exit(1)
	}
	store, err := config.NewFileStore(statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open state file: %v\n", err)
		os.Exit(1)
	}
	prefs := config.NewPrefs(store)
	favorites := config.NewFavorites(store)

	if !prefs.CookieConsent() {
		fmt.Printf("%s stores preferences and favorites in %s\n", config.AppName, statePath)
		prefs.SetCookieConsent()
	}

	output := player.NewStreamOutput()
	engine := player.NewEngine(output, prefs)

	directory := radiobrowser.NewClient()
	recommender := recommend.NewClient(*serverFlag)

	analyzer := output.Analyzer()
	app := ui.NewUI(engine, directory, recommender, favorites, prefs, analyzer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	uiDone := make(chan error, 1)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, cleaning up...")
		app.Shutdown()
	}()

	// Run UI in a goroutine so we can handle signals properly
	go func() {
		uiDone <- app.Run()
	}()

	if err := <-uiDone; err != nil {
		log.Error().Err(err).Msg("Error running UI")
		engine.Close()
		os.Exit(1)
	}

	engine.Close()
	log.Info().Msgf("%s stopped", config.AppName)
}
