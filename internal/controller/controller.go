package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"finqa/internal/domain"
	"finqa/internal/render"
	"finqa/internal/validation"
)

// Texts written to the output surfaces.
const (
	UploadingText      = "Uploading..."
	UploadFailedText   = "Upload failed"
	RunningText        = "Running pipeline..."
	PipelineFailedText = "Pipeline failed"
	ResettingText      = "Resetting index..."
	ResetFailedText    = "Reset failed"
	SearchingText      = "Searching..."
	QueryFailedText    = "Query failed"
)

// ThemeSaveFailedText is alerted when a toggled theme could not be persisted.
const ThemeSaveFailedText = "Theme preference could not be saved"

var placeholders = map[string]struct{}{
	UploadingText: {},
	RunningText:   {},
	ResettingText: {},
	SearchingText: {},
}

// IsPlaceholder reports whether text is an in-flight placeholder.
func IsPlaceholder(text string) bool {
	_, ok := placeholders[text]
	return ok
}

// Backend is the remote ingestion and question-answering service.
type Backend interface {
	UploadNews(ctx context.Context, name string, r io.Reader) (domain.UploadResult, error)
	RunPipeline(ctx context.Context) (json.RawMessage, error)
	ResetIndex(ctx context.Context) (json.RawMessage, error)
	FinancialQA(ctx context.Context, q string) (domain.QueryResponse, error)
}

// AnswerRenderer turns an answer into text for the answer surface.
type AnswerRenderer interface {
	Render(domain.Answer) string
}

// ApplicationError is a query the backend answered with a non-ok status.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string { return e.Message }

// Upload sends a validated corpus file and reports the outcome on its status surface.
type Upload struct {
	backend Backend
	status  domain.Surface
	alert   domain.Alerter
	log     zerolog.Logger

	// Progress optionally wraps the file reader, e.g. with a progress bar.
	Progress func(r io.Reader, size int64) io.Reader
}

// NewUpload builds the upload controller. status receives the placeholder and
// the outcome; alert receives validation failures.
func NewUpload(backend Backend, status domain.Surface, alert domain.Alerter, log zerolog.Logger) *Upload {
	return &Upload{backend: backend, status: status, alert: alert, log: log.With().Str("op", "upload").Logger()}
}

// Run validates f and uploads it. Validation failures alert the user and
// send nothing. The returned error has already been shown.
func (u *Upload) Run(ctx context.Context, f *validation.File) error {
	if err := validation.ValidateUploadFile(f); err != nil {
		u.alert.Alert(err.Error())
		return err
	}
	u.status.Set(UploadingText)
	res, err := u.send(ctx, f)
	if err != nil {
		u.status.Set(UploadFailedText)
		u.log.Error().Err(err).Str("file", f.Name).Msg("upload failed")
		return err
	}
	u.status.Set(fmt.Sprintf("Uploaded: %s, %d items", res.Status, res.Count))
	return nil
}

func (u *Upload) send(ctx context.Context, f *validation.File) (domain.UploadResult, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return domain.UploadResult{}, err
	}
	defer fh.Close()
	var r io.Reader = fh
	if u.Progress != nil {
		r = u.Progress(fh, f.Size)
	}
	return u.backend.UploadNews(ctx, f.Name, r)
}

// JSONOperation triggers a parameterless backend job and shows its response
// as indented JSON.
type JSONOperation struct {
	working string
	failed  string
	call    func(ctx context.Context) (json.RawMessage, error)
	out     domain.Surface
	log     zerolog.Logger
}

// NewPipelineRun builds the controller for the ingestion/indexing pipeline.
func NewPipelineRun(backend Backend, out domain.Surface, log zerolog.Logger) *JSONOperation {
	return &JSONOperation{
		working: RunningText,
		failed:  PipelineFailedText,
		call:    backend.RunPipeline,
		out:     out,
		log:     log.With().Str("op", "run-pipeline").Logger(),
	}
}

// NewIndexReset builds the controller that clears the backend index.
func NewIndexReset(backend Backend, out domain.Surface, log zerolog.Logger) *JSONOperation {
	return &JSONOperation{
		working: ResettingText,
		failed:  ResetFailedText,
		call:    backend.ResetIndex,
		out:     out,
		log:     log.With().Str("op", "reset-index").Logger(),
	}
}

// Run triggers the job and writes its indented response, or the failure text.
func (o *JSONOperation) Run(ctx context.Context) error {
	o.out.Set(o.working)
	raw, err := o.call(ctx)
	var text string
	if err == nil {
		text, err = render.PrettyJSON(raw)
	}
	if err != nil {
		o.out.Set(o.failed)
		o.log.Error().Err(err).Msg(o.failed)
		return err
	}
	o.out.Set(text)
	return nil
}

// Query validates a question, asks the backend and renders the answer.
type Query struct {
	backend  Backend
	renderer AnswerRenderer
	answer   domain.Surface
	alert    domain.Alerter
	log      zerolog.Logger
}

// NewQuery builds the query controller.
func NewQuery(backend Backend, renderer AnswerRenderer, answer domain.Surface, alert domain.Alerter, log zerolog.Logger) *Query {
	return &Query{
		backend:  backend,
		renderer: renderer,
		answer:   answer,
		alert:    alert,
		log:      log.With().Str("op", "query").Logger(),
	}
}

// Run validates text, asks the backend and writes the rendered answer or the
// failure text.
func (q *Query) Run(ctx context.Context, text string) error {
	query, err := validation.ValidateQueryText(text)
	if err != nil {
		q.alert.Alert(err.Error())
		return err
	}
	q.answer.Set(SearchingText)
	resp, err := q.backend.FinancialQA(ctx, query)
	if err != nil {
		q.answer.Set(QueryFailedText)
		q.log.Error().Err(err).Str("q", query).Msg("query failed")
		return err
	}
	if resp.Status != domain.StatusOK {
		msg := resp.Message
		if msg == "" {
			msg = QueryFailedText
		}
		q.answer.Set(msg)
		return &ApplicationError{Message: msg}
	}
	a := domain.Answer{}
	if resp.Answer != nil {
		a = *resp.Answer
	}
	a.Normalize()
	q.answer.Set(q.renderer.Render(a))
	return nil
}

// ThemeToggler flips the display preference.
type ThemeToggler interface {
	Toggle() (domain.Theme, error)
}

// ThemeToggle switches the display theme. The new theme is applied even when
// it cannot be saved; the save failure is alerted and logged.
type ThemeToggle struct {
	themes ThemeToggler
	alert  domain.Alerter
	log    zerolog.Logger
}

// NewThemeToggle builds the theme toggle controller.
func NewThemeToggle(themes ThemeToggler, alert domain.Alerter, log zerolog.Logger) *ThemeToggle {
	return &ThemeToggle{
		themes: themes,
		alert:  alert,
		log:    log.With().Str("op", "toggle-theme").Logger(),
	}
}

// Run flips the theme and persists it.
func (t *ThemeToggle) Run(context.Context) error {
	next, err := t.themes.Toggle()
	if err != nil {
		t.log.Error().Err(err).Str("theme", string(next)).Msg("theme preference not saved")
		t.alert.Alert(ThemeSaveFailedText)
		return err
	}
	t.log.Debug().Str("theme", string(next)).Msg("theme toggled")
	return nil
}
