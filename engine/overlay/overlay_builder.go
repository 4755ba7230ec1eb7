package overlay

import "github.com/muesli/termenv"

// OverlayBuilderOption is a functional option for configuring an overlay.
type OverlayBuilderOption func(*overlay)

// WithTitle sets the heading printed above the rows.
//
// Parameters:
//   - title: the heading
//
// Returns:
//   - OverlayBuilderOption: a function that applies the title option
func WithTitle(title string) OverlayBuilderOption {
	return func(o *overlay) {
		o.title = title
	}
}

// WithMaxInfoLines bounds the info log. Zero keeps every line.
//
// Parameters:
//   - n: the number of lines to keep
//
// Returns:
//   - OverlayBuilderOption: a function that applies the limit
func WithMaxInfoLines(n int) OverlayBuilderOption {
	return func(o *overlay) {
		o.maxInfoLines = n
	}
}

// WithProfile forces a terminal color profile, e.g. termenv.Ascii for plain output.
//
// Parameters:
//   - profile: the color profile
//
// Returns:
//   - OverlayBuilderOption: a function that applies the profile
func WithProfile(profile termenv.Profile) OverlayBuilderOption {
	return func(o *overlay) {
		o.profile = profile
	}
}

// WithVisible sets the initial visibility.
//
// Parameters:
//   - visible: true to show the overlay
//
// Returns:
//   - OverlayBuilderOption: a function that applies the visibility
func WithVisible(visible bool) OverlayBuilderOption {
	return func(o *overlay) {
		o.visible = visible
	}
}
