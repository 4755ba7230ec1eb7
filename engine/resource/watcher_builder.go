package resource

// WatcherBuilderOption is a functional option for configuring a watcher.
type WatcherBuilderOption func(*watcher)

// WithHotReloadMode sets how changed sources are detected. Defaults to HotReloadModePoll.
//
// Parameters:
//   - mode: the hot reload mode
//
// Returns:
//   - WatcherBuilderOption: a function that applies the mode
func WithHotReloadMode(mode HotReloadMode) WatcherBuilderOption {
	return func(w *watcher) {
		w.mode = mode
	}
}
