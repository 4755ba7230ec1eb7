package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-forward/engine/config"
	"github.com/spf13/cobra"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCommand(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

// flags holds the command line overrides applied on top of the config file.
type flags struct {
	configPath string
	backend    string
	mode       string
	hotReload  string
	model      string
	profile    bool
}

// newRootCommand creates the root command, binding its flags to f.
func newRootCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "oxy-forward",
		Short:        "Forward renderer for textured quads and OBJ meshes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "TOML or YAML config file")
	cmd.Flags().StringVarP(&f.backend, "backend", "b", "", "renderer backend: opengl or wgpu")
	cmd.Flags().StringVar(&f.mode, "mode", "", "initial render mode: textured_quad or textured_mesh")
	cmd.Flags().StringVar(&f.hotReload, "hot-reload", "", "shader hot reload: poll, notify or off")
	cmd.Flags().StringVar(&f.model, "model", "", "OBJ model to load")
	cmd.Flags().BoolVar(&f.profile, "profile", false, "print frame statistics and the info log every second")
	return cmd
}

// loadConfig reads the config file, if any, and applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Printf("[Main] loaded config %s", f.configPath)
	}

	if cmd.Flags().Changed("backend") {
		cfg.Renderer.Backend = f.backend
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = f.mode
	}
	if cmd.Flags().Changed("hot-reload") {
		cfg.HotReload.Mode = f.hotReload
	}
	if cmd.Flags().Changed("model") {
		cfg.Assets.ModelPath = f.model
	}
	if cmd.Flags().Changed("profile") {
		cfg.Renderer.Profiling = f.profile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
