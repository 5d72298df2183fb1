package theme

import (
	"fmt"
	"sync"

	"finqa/internal/domain"
)

// Controller holds the applied theme and keeps it in sync with the store.
type Controller struct {
	mu      sync.Mutex
	store   Store
	applier domain.ThemeApplier
	current domain.Theme
}

// NewController returns a controller over store. applier may be nil.
func NewController(store Store, applier domain.ThemeApplier) *Controller {
	return &Controller{store: store, applier: applier}
}

// Init applies the stored preference, or the system preference when none is
// stored. It never writes to the store.
func (c *Controller) Init(systemDark func() bool) (domain.Theme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok, err := c.store.Load()
	if err != nil {
		// An unreadable state file falls back to the system preference.
		ok = false
		err = fmt.Errorf("loading theme: %w", err)
	}
	if !ok {
		t = domain.ThemeLight
		if systemDark != nil && systemDark() {
			t = domain.ThemeDark
		}
	}
	c.apply(t)
	return t, err
}

// Toggle switches to the opposite of the applied theme and persists it.
func (c *Controller) Toggle() (domain.Theme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.currentLocked().Opposite()
	c.apply(next)
	if err := c.store.Save(next); err != nil {
		return next, fmt.Errorf("saving theme: %w", err)
	}
	return next, nil
}

// Current returns the applied theme, light before Init.
func (c *Controller) Current() domain.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Controller) currentLocked() domain.Theme {
	if c.current == "" {
		return domain.ThemeLight
	}
	return c.current
}

func (c *Controller) apply(t domain.Theme) {
	c.current = t
	if c.applier != nil {
		c.applier.ApplyTheme(t)
	}
}
