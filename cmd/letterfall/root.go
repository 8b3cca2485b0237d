package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/phanxgames/letterfall"
	"github.com/phanxgames/letterfall/flyin"
)

//go:embed page.html
var defaultPage []byte

type runOptions struct {
	configFile  string
	width       int
	height      int
	title       string
	showFPS     bool
	debug       bool
	scriptFile  string
	screenshots string
	logLevel    string
	logFile     string
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "letterfall",
		Short:         "per-character fly-in text effect",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var opts runOptions
	runCmd := &cobra.Command{
		Use:   "run [page.html]",
		Short: "open a page and play the effect",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(opts, args)
		},
	}
	f := runCmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "effect config file (yaml)")
	f.IntVar(&opts.width, "width", 960, "window width")
	f.IntVar(&opts.height, "height", 540, "window height")
	f.StringVar(&opts.title, "title", "", "window title (default: the page title)")
	f.BoolVar(&opts.showFPS, "fps", false, "show the FPS overlay")
	f.BoolVar(&opts.debug, "debug", false, "enable debug checks and frame stats")
	f.StringVar(&opts.scriptFile, "script", "", "automation script (json)")
	f.StringVar(&opts.screenshots, "screenshots", "screenshots", "screenshot output directory")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.StringVar(&opts.logFile, "log-file", "", "also write JSON logs to this file, rotated at 10MB")

	checkCmd := &cobra.Command{
		Use:   "check [page.html]",
		Short: "parse a page and report what the effect would animate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkPage(cmd.OutOrStdout(), opts.configFile, args)
		},
	}
	checkCmd.Flags().StringVar(&opts.configFile, "config", "", "effect config file (yaml)")

	rootCmd.AddCommand(runCmd, checkCmd)
	return rootCmd
}

// newLogger builds a console logger at the named level. With a file path,
// entries are also written as JSON to a rotating log file.
func newLogger(level, file string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if file == "" {
		return log, nil
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(enc),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
		}),
		lvl,
	)
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}

func readPage(args []string) ([]byte, error) {
	if len(args) == 0 {
		return defaultPage, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return data, nil
}

func loadConfig(path string) (flyin.Config, error) {
	if path == "" {
		return flyin.DefaultConfig(), nil
	}
	return flyin.LoadConfig(path)
}

// buildDocument parses page into a new document and installs the effect.
func buildDocument(page []byte, cfg flyin.Config, width, height int, log *zap.Logger) (*letterfall.Document, *flyin.Effect, string, error) {
	p, warnings, err := letterfall.ParseHTML(bytes.NewReader(page))
	if err != nil {
		return nil, nil, "", err
	}
	for _, w := range warnings {
		log.Warn("page", zap.Error(w))
	}
	doc := letterfall.NewDocument(float64(width), float64(height), letterfall.WithLogger(log))
	doc.LoadPage(p)

	e := flyin.New(doc, cfg)
	e.Install()
	return doc, e, p.Title, nil
}

func runPage(opts runOptions, args []string) error {
	log, err := newLogger(opts.logLevel, opts.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	page, err := readPage(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	doc, effect, title, err := buildDocument(page, cfg, opts.width, opts.height, log)
	if err != nil {
		return err
	}
	doc.ScreenshotDir = opts.screenshots

	if opts.scriptFile != "" {
		data, err := os.ReadFile(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		s, err := letterfall.LoadScript(data)
		if err != nil {
			return err
		}
		s.Handle("replay", func(*letterfall.Document) {
			effect.Finish()
			effect.Run()
		})
		s.Handle("finish", func(*letterfall.Document) { effect.Finish() })
		doc.SetScript(s)
	}

	// Clicking anywhere on the page replays the effect.
	doc.Body().AddClickListener(func(letterfall.ClickEvent) {
		effect.Finish()
		effect.Run()
	})

	if opts.title != "" {
		title = opts.title
	}
	log.Info("starting", zap.String("title", title), zap.Int("width", opts.width), zap.Int("height", opts.height))
	return letterfall.Run(doc, letterfall.RunConfig{
		Title:   title,
		Width:   opts.width,
		Height:  opts.height,
		ShowFPS: opts.showFPS,
		Debug:   opts.debug,
	})
}

func checkPage(w io.Writer, configFile string, args []string) error {
	page, err := readPage(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	doc, _, title, err := buildDocument(page, cfg, 960, 540, zap.NewNop())
	if err != nil {
		return err
	}

	origin := doc.Query(cfg.OriginClass)
	targets := doc.QueryAll(cfg.TargetClass)
	fmt.Fprintf(w, "title:   %q\n", title)
	if origin == nil {
		fmt.Fprintf(w, "origin:  none (.%s), the effect will not run\n", cfg.OriginClass)
	} else {
		r := doc.BoundingRect(origin)
		fmt.Fprintf(w, "origin:  %gx%g at %g,%g\n", r.Width, r.Height, r.X, r.Y)
	}
	for i, t := range targets {
		timing := flyin.ResolveTiming(t, cfg.Timing)
		fmt.Fprintf(w, "target %d: <%s> %d runes, duration %g-%gms, stagger %gms\n",
			i, t.Tag, len([]rune(t.TextContent())), timing.MinDuration, timing.MaxDuration, timing.PerCharStagger)
	}
	return nil
}
