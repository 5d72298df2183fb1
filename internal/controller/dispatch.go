package controller

import (
	"context"
	"fmt"
	"sort"

	"finqa/internal/validation"
)

// Action names a user-triggered operation.
type Action string

const (
	ActionUpload      Action = "upload"
	ActionRunPipeline Action = "run-pipeline"
	ActionResetIndex  Action = "reset-index"
	ActionQuery       Action = "query"
	ActionToggleTheme Action = "toggle-theme"
)

// Handler runs one action. input is the file path for uploads, the question
// text for queries and ignored otherwise.
type Handler func(ctx context.Context, input string) error

// Controllers bundles everything the dispatch table routes to.
type Controllers struct {
	Upload   *Upload
	Pipeline *JSONOperation
	Reset    *JSONOperation
	Query    *Query
	Theme    *ThemeToggle
}

// Dispatcher maps action names to controller invocations. It is built once
// at startup and not modified afterwards.
type Dispatcher struct {
	handlers map[Action]Handler
}

// NewDispatcher registers a handler for every non-nil controller in c.
func NewDispatcher(c Controllers) *Dispatcher {
	h := map[Action]Handler{}
	if c.Upload != nil {
		h[ActionUpload] = func(ctx context.Context, path string) error {
			return c.Upload.Run(ctx, validation.SelectFile(path))
		}
	}
	if c.Pipeline != nil {
		h[ActionRunPipeline] = func(ctx context.Context, _ string) error { return c.Pipeline.Run(ctx) }
	}
	if c.Reset != nil {
		h[ActionResetIndex] = func(ctx context.Context, _ string) error { return c.Reset.Run(ctx) }
	}
	if c.Query != nil {
		h[ActionQuery] = c.Query.Run
	}
	if c.Theme != nil {
		h[ActionToggleTheme] = func(ctx context.Context, _ string) error { return c.Theme.Run(ctx) }
	}
	return &Dispatcher{handlers: h}
}

// Dispatch runs the handler registered for action.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, input string) error {
	h, ok := d.handlers[action]
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}
	return h(ctx, input)
}

// Actions lists the registered actions in name order.
func (d *Dispatcher) Actions() []Action {
	out := make([]Action, 0, len(d.handlers))
	for a := range d.handlers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
