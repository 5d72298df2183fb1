package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"finqa/internal/client"
	"finqa/internal/config"
	"finqa/internal/controller"
	"finqa/internal/domain"
	"finqa/internal/logging"
	"finqa/internal/render"
	"finqa/internal/theme"
)

// errReported marks failures the user has already been shown.
var errReported = errors.New("reported")

type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() []error { return []error{e.err, errReported} }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

type globalFlags struct {
	configPath string
	baseURL    string
	verbose    bool
}

// app holds what every command needs: config, logger, backend and theme state.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	cfg      *config.AppConfig
	log      zerolog.Logger
	closeLog func() error
	backend  *client.Client
	themes   *theme.Controller
}

// newApp loads configuration and wires the shared components. The terminal
// UI logs to the configured file; one-shot commands log to stderr.
func newApp(cmd *cobra.Command, flags *globalFlags, interactive bool, applier domain.ThemeApplier) (*app, error) {
	var cfg *config.AppConfig
	var err error
	if flags.configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(flags.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.baseURL != "" {
		cfg.Backend.BaseURL = flags.baseURL
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}

	opts := logging.Options{Level: cfg.Log.Level, Console: cmd.ErrOrStderr()}
	if interactive {
		opts.File = cfg.Log.File
	}
	log, closeLog, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	backend, err := client.New(client.Config{BaseURL: cfg.Backend.BaseURL, Logger: log})
	if err != nil {
		closeLog()
		return nil, err
	}

	return &app{
		stdout:   cmd.OutOrStdout(),
		stderr:   cmd.ErrOrStderr(),
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		backend:  backend,
		themes:   theme.NewController(theme.NewFileStore(cfg.StateFile), applier),
	}, nil
}

// Close releases the log file.
func (a *app) Close() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

// palette returns the palette of the applied theme.
func (a *app) palette() render.Palette {
	return render.PaletteFor(a.themes.Current())
}

// tuiRenderer paints answers with the palette of the applied theme, so a
// toggle takes effect from the next answer on.
func tuiRenderer(a *app) controller.AnswerRenderer {
	return render.TerminalRenderer{Palette: a.palette}
}

type cliOptions struct {
	quiet    bool
	html     bool
	progress bool
}

// cliDispatcher builds the action table for one-shot commands. All surfaces
// print to stdout and alerts go to stderr.
func (a *app) cliDispatcher(opts cliOptions) *controller.Dispatcher {
	var out domain.Surface = controller.NewWriterSurface(a.stdout)
	if opts.quiet {
		out = controller.NewFinalSurface(a.stdout)
	}
	alerts := controller.NewWriterAlerter(a.stderr)

	renderer := tuiRenderer(a)
	if opts.html {
		renderer = render.HTMLRenderer{}
	}

	upload := controller.NewUpload(a.backend, out, alerts, a.log)
	if opts.progress {
		upload.Progress = a.progressReader
	}
	return controller.NewDispatcher(controller.Controllers{
		Upload:   upload,
		Pipeline: controller.NewPipelineRun(a.backend, out, a.log),
		Reset:    controller.NewIndexReset(a.backend, out, a.log),
		Query:    controller.NewQuery(a.backend, renderer, out, alerts, a.log),
		Theme:    controller.NewThemeToggle(a.themes, alerts, a.log),
	})
}

// progressReader reports upload reads as a byte progress bar on stderr.
func (a *app) progressReader(r io.Reader, size int64) io.Reader {
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(a.stderr),
		progressbar.OptionSetDescription("reading corpus"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
	pr := progressbar.NewReader(r, bar)
	return &pr
}
