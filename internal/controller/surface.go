package controller

import (
	"fmt"
	"io"
	"sync"
)

// WriterSurface prints every update as a line on w.
type WriterSurface struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSurface returns a surface printing to w.
func NewWriterSurface(w io.Writer) *WriterSurface {
	return &WriterSurface{w: w}
}

// Set prints text on its own line.
func (s *WriterSurface) Set(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, text)
}

// FinalSurface prints only settled results and skips in-flight placeholders.
type FinalSurface struct {
	WriterSurface
}

// NewFinalSurface returns a surface printing settled results to w.
func NewFinalSurface(w io.Writer) *FinalSurface {
	return &FinalSurface{WriterSurface{w: w}}
}

// Set prints text unless it is a placeholder.
func (s *FinalSurface) Set(text string) {
	if IsPlaceholder(text) {
		return
	}
	s.WriterSurface.Set(text)
}

// WriterAlerter prints alerts on w.
type WriterAlerter struct {
	w io.Writer
}

// NewWriterAlerter returns an alerter printing to w.
func NewWriterAlerter(w io.Writer) *WriterAlerter {
	return &WriterAlerter{w: w}
}

// Alert prints message prefixed with "alert:".
func (a *WriterAlerter) Alert(message string) {
	fmt.Fprintf(a.w, "alert: %s\n", message)
}
