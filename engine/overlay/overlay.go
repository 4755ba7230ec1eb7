package overlay

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"
)

// LabelValue is one row of the debug display.
type LabelValue struct {
	Label string
	Value string
}

// overlay is the implementation of the Overlay interface.
type overlay struct {
	mu sync.Mutex

	title        string
	maxInfoLines int
	profile      termenv.Profile
	visible      bool
	revision     uint64

	info   []string
	values []LabelValue
	index  map[string]int
}

// Overlay is the engine's debug display: an append-only info log plus ordered label/value rows
// (FPS, frame time, memory) rendered as styled terminal text.
type Overlay interface {
	// Info appends a formatted line to the info log. The oldest lines are dropped past the configured limit.
	//
	// Parameters:
	//   - format: a fmt format string
	//   - args: the format arguments
	Info(format string, args ...any)

	// InfoLines returns a copy of the info log, oldest first.
	//
	// Returns:
	//   - []string: the info lines
	InfoLines() []string

	// SetValue sets the value of a row. New labels are appended; existing labels keep their position.
	//
	// Parameters:
	//   - label: the row label
	//   - value: the row value
	SetValue(label, value string)

	// Values returns a copy of the rows in insertion order.
	//
	// Returns:
	//   - []LabelValue: the rows
	Values() []LabelValue

	// Visible reports whether Render writes anything.
	//
	// Returns:
	//   - bool: true if the overlay is shown
	Visible() bool

	// SetVisible shows or hides the overlay.
	//
	// Parameters:
	//   - visible: true to show
	SetVisible(visible bool)

	// Revision returns a counter that changes whenever the rendered output would change.
	//
	// Returns:
	//   - uint64: the current revision
	Revision() uint64

	// Render writes the rows followed by the info log to w.
	//
	// Parameters:
	//   - w: the destination, usually os.Stdout
	//
	// Returns:
	//   - error: the first write error
	Render(w io.Writer) error
}

var _ Overlay = &overlay{}

// NewOverlay creates a visible overlay that keeps the last 64 info lines and detects the terminal's color profile.
//
// Parameters:
//   - options: functional options to configure the overlay
//
// Returns:
//   - Overlay: the overlay
func NewOverlay(options ...OverlayBuilderOption) Overlay {
	o := &overlay{
		title:        "oxy-forward",
		maxInfoLines: 64,
		profile:      termenv.EnvColorProfile(),
		visible:      true,
		index:        make(map[string]int),
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *overlay) Info(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.info = append(o.info, fmt.Sprintf(format, args...))
	o.revision++
	if o.maxInfoLines > 0 && len(o.info) > o.maxInfoLines {
		o.info = append(o.info[:0], o.info[len(o.info)-o.maxInfoLines:]...)
	}
}

func (o *overlay) InfoLines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.info...)
}

func (o *overlay) SetValue(label, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if i, ok := o.index[label]; ok {
		if o.values[i].Value != value {
			o.values[i].Value = value
			o.revision++
		}
		return
	}
	o.revision++
	o.index[label] = len(o.values)
	o.values = append(o.values, LabelValue{Label: label, Value: value})
}

func (o *overlay) Values() []LabelValue {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]LabelValue(nil), o.values...)
}

func (o *overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

func (o *overlay) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.visible != visible {
		o.visible = visible
		o.revision++
	}
}

func (o *overlay) Revision() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.revision
}

func (o *overlay) Render(w io.Writer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.visible {
		return nil
	}

	out := termenv.NewOutput(w, termenv.WithProfile(o.profile))
	title := out.String(o.title).Bold().Foreground(out.Color("12"))
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	width := 0
	for _, v := range o.values {
		width = max(width, len(v.Label))
	}
	for _, v := range o.values {
		label := out.String(fmt.Sprintf("%-*s", width, v.Label)).Foreground(out.Color("10"))
		if _, err := fmt.Fprintf(w, "  %s  %s\n", label, v.Value); err != nil {
			return err
		}
	}
	for _, line := range o.info {
		if _, err := fmt.Fprintf(w, "  %s\n", out.String(line).Faint()); err != nil {
			return err
		}
	}
	return nil
}
