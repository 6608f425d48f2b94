package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ChicagoDave/threadweaver/internal/server"
	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/chat"
	"github.com/ChicagoDave/threadweaver/pkg/physics"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
	"github.com/ChicagoDave/threadweaver/pkg/world"
)

// loadConfig reads city.yaml from the project directory, or returns the
// defaults when no project is given.
func loadConfig(projectPath string) (spec.Config, error) {
	if projectPath == "" {
		return spec.Defaults(), nil
	}
	cfg, err := spec.LoadProject(projectPath)
	if err != nil {
		return spec.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return *cfg, nil
}

func runServe(ctx context.Context, projectPath string, port int, memoryDB string) error {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := loadConfig(projectPath)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var store chat.MemoryStore = chat.NewMapStore(rng)
	if memoryDB != "" {
		store, err = chat.OpenSQLiteStore(memoryDB, rng)
		if err != nil {
			return err
		}
		logger.Printf("npc memory: %s", memoryDB)
	}
	defer store.Close()

	provider := chat.NewOpenAIProvider(chat.OpenAIConfigFromEnv())
	st := provider.Status()
	yes := map[bool]string{true: "yes", false: "no"}
	logger.Printf("OpenAI key loaded: %s | model: %s", yes[st.HasKey], st.Model)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Port:   port,
		Config: cfg,
		Chat:   chat.NewHandler(provider, store, logger),
		Logger: logger,
	})
	return srv.Run(ctx)
}

type generateOptions struct {
	project string
	out     string
	mapOut  string
	frames  int
	seed    int64
	weather string
}

func runGenerate(opts generateOptions) error {
	cfg, err := loadConfig(opts.project)
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.weather != "" {
		if !spec.IsWeatherPreset(opts.weather) {
			return fmt.Errorf("unknown weather preset %q", opts.weather)
		}
		cfg.Weather = opts.weather
	}

	logger := log.New(os.Stderr, "[world] ", 0)
	w := world.New(cfg, scene.NewGraph(), physics.NewWorld(), world.WithLogger(logger))
	for i := 0; i < opts.frames; i++ {
		w.Frame(1.0 / 60)
	}

	report := w.Report()
	report.Merge(w.Validate())
	if !report.Valid {
		printValidationReport(os.Stderr, report)
		return fmt.Errorf("generated world failed validation")
	}

	if opts.mapOut != "" {
		if err := writeJSONFile(opts.mapOut, w.Minimap(true)); err != nil {
			return err
		}
	}
	if opts.out == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(w.Scene)
	}
	if err := scene.WriteFile(opts.out, w.Scene); err != nil {
		return err
	}
	printStats(os.Stderr, w.Stats())
	return nil
}

func runValidate(projectPath, scenePath string) error {
	path := filepath.Join(projectPath, "city.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := spec.ValidateDocument(raw); err != nil {
		return err
	}
	cfg, err := spec.Parse(raw)
	if err != nil {
		return err
	}

	report := validation.ValidateConfig(cfg)
	_, analyticsReport := analytics.Resolve(cfg)
	report.Merge(analyticsReport)

	if scenePath != "" {
		sceneReport, err := validateScene(scenePath)
		if err != nil {
			return err
		}
		report.Merge(sceneReport)
	}

	printValidationReport(os.Stdout, report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

// validateScene checks the structure of an exported scene file.
func validateScene(path string) (*validation.Report, error) {
	g, err := scene.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	return scene.ValidateGraph(g), nil
}

func runSchema(out io.Writer) error {
	doc, err := spec.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(doc))
	return err
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
