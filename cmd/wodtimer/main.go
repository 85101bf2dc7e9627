package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/adibhanna/wodtimer/internal/clock"
	"github.com/adibhanna/wodtimer/internal/config"
	"github.com/adibhanna/wodtimer/internal/engine"
	"github.com/adibhanna/wodtimer/internal/models"
	"github.com/adibhanna/wodtimer/internal/storage"
	"github.com/adibhanna/wodtimer/internal/ui/help"
	"github.com/adibhanna/wodtimer/internal/ui/history"
	"github.com/adibhanna/wodtimer/internal/ui/library"
	"github.com/adibhanna/wodtimer/internal/ui/menu"
	"github.com/adibhanna/wodtimer/internal/ui/settings"
	"github.com/adibhanna/wodtimer/internal/ui/setup"
	"github.com/adibhanna/wodtimer/internal/ui/timer"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to settings.yaml")
	dataDir := flag.String("data", "", "override the data directory")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	if *configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
		*configPath = path
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load settings:", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("Failed to create data directory:", err)
	}
	logFile, err := tea.LogToFile(cfg.LogFile, "wodtimer")
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}
	defer logFile.Close()

	level, err := cfg.SlogLevel()
	if err != nil {
		log.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}
	defer store.Close()

	a := &app{
		ctx:        context.Background(),
		store:      store,
		log:        logger,
		cfg:        cfg,
		configPath: *configPath,
	}
	if err := a.run(); err != nil {
		logger.Error("wodtimer exited with error", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	ctx        context.Context
	store      *storage.Storage
	log        *slog.Logger
	cfg        config.Config
	configPath string
}

// runProgram runs model full screen and returns its final state.
func runProgram[M tea.Model](model M) (M, error) {
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		var zero M
		return zero, err
	}
	return final.(M), nil
}

func (a *app) run() error {
	a.log.Info("starting", "data_dir", a.cfg.DataDir)

	for {
		menuModel, err := menu.New(a.ctx, a.store)
		if err != nil {
			return err
		}
		menuModel, err = runProgram(menuModel)
		if err != nil {
			return err
		}
		if menuModel.ShouldQuit() {
			fmt.Println("💪 See you at the next WOD!")
			return nil
		}

		switch menuModel.GetSelected() {
		case menu.StartWorkout:
			mode, _ := menuModel.SelectedMode()
			plan := models.DefaultPlan(mode)
			plan.SoundEnabled = a.cfg.SoundEnabled
			plan.VibrationEnabled = a.cfg.VibrationEnabled
			err = a.setupAndRun(plan, nil)

		case menu.SavedWorkouts:
			err = a.runLibrary()

		case menu.History:
			_, err = runProgram(history.New(a.ctx, a.store, ""))

		case menu.Settings:
			var s settings.Model
			s, err = runProgram(settings.New(a.ctx, a.store, a.configPath, a.cfg))
			if err == nil && s.Saved() {
				a.cfg = s.Config()
				a.log.Info("settings saved", "path", a.configPath)
			}

		case menu.Help:
			_, err = runProgram(help.New())
		}
		if err != nil {
			return err
		}
	}
}

func (a *app) runLibrary() error {
	lib, err := runProgram(library.New(a.ctx, a.store))
	if err != nil {
		return err
	}
	chosen, ok := lib.Chosen()
	if !ok {
		return nil
	}

	// Reload so the template carries its stored state.
	template, err := a.store.GetSavedWorkout(a.ctx, chosen.ID)
	if err != nil {
		return err
	}
	if err := a.store.MarkWorkoutUsed(a.ctx, template.ID); err != nil {
		a.log.Warn("marking workout used", "id", template.ID, "err", err)
	}
	return a.setupAndRun(template.Plan, &template)
}

func (a *app) setupAndRun(plan models.WorkoutPlan, template *models.SavedWorkout) error {
	form, err := runProgram(setup.New(a.ctx, a.store, plan, template))
	if err != nil {
		return err
	}
	if !form.Started() {
		return nil
	}

	t, err := timer.New(a.ctx, a.store, clock.Real{}, a.log, form.Plan(), form.Name(),
		engine.WithCountdown(a.cfg.CountdownSeconds),
		engine.WithTickPeriods(a.cfg.CountdownTick(), a.cfg.RunningTick()),
		engine.WithFinalCueSeconds(a.cfg.FinalCueSeconds),
	)
	if err != nil {
		return err
	}
	defer t.Close()

	t, err = runProgram(t)
	if err != nil {
		return err
	}
	if result, ok := t.Result(); ok {
		a.log.Info("workout finished",
			"mode", result.Plan.Mode,
			"elapsed_seconds", result.ElapsedSeconds,
			"rounds", result.CurrentRound,
			"saved", t.Saved(),
		)
	}
	return nil
}
