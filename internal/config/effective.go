package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/transition"
)

type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over the built-in defaults. Monitor
// entries inherit unset fields from the effective default record.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Default != nil {
		out, err := mergeOutput("default", cfg.Default, *raw.Default)
		if err != nil {
			return nil, err
		}
		cfg.Default = out
	}

	for _, name := range sortedKeys(raw.Monitors) {
		out, err := mergeOutput("monitors."+name, cfg.Default, raw.Monitors[name])
		if err != nil {
			return nil, err
		}
		cfg.Monitors[strings.TrimSpace(name)] = out
	}

	if raw.Workspaces != nil {
		if raw.Workspaces.Enabled != nil {
			cfg.Workspaces.Enabled = *raw.Workspaces.Enabled
		}
		for id, p := range raw.Workspaces.Wallpapers {
			cfg.Workspaces.Wallpapers[id] = p
		}
	}

	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*raw.Logging.Level))
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		cfg.Logging.MaxSizeMB = derefInt(raw.Logging.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(raw.Logging.MaxFiles, cfg.Logging.MaxFiles)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeOutput(path string, base Output, patch RawOutput) (Output, error) {
	out := base
	if patch.Path != nil {
		out.Path = *patch.Path
	}
	if patch.Transition != nil {
		kind, err := transition.ParseKind(*patch.Transition)
		if err != nil {
			return Output{}, &ValidationError{Path: path + ".transition", Err: fmt.Errorf("%w; must be one of: %s", err, oneOf(transition.Kinds))}
		}
		out.Transition = kind
	}
	out.TransitionTime = derefInt(patch.TransitionTime, out.TransitionTime)
	if patch.Mode != nil {
		mode, err := render.ParseFillMode(*patch.Mode)
		if err != nil {
			return Output{}, &ValidationError{Path: path + ".mode", Err: fmt.Errorf("%w; must be one of: %s", err, oneOf(render.FillModes))}
		}
		out.Mode = mode
	}
	if patch.Duration != nil {
		out.Duration = *patch.Duration
	}
	if patch.Sorting != nil {
		out.Sorting = SortOrder(strings.ToLower(strings.TrimSpace(*patch.Sorting)))
	}
	if patch.Recursive != nil {
		out.Recursive = *patch.Recursive
	}
	return out, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
