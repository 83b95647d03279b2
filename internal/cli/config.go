package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
)

// fileConfig mirrors the TOML defaults file. Pointer fields separate
// absent keys from zero values.
type fileConfig struct {
	Target        *float64 `toml:"target"`
	Tolerance     *float64 `toml:"tolerance"`
	Peak          *float64 `toml:"peak"`
	MaxIterations *int     `toml:"max_iterations"`
	Lookahead     *string  `toml:"lookahead"`
	Release       *string  `toml:"release"`
	BitDepth      *int     `toml:"bit_depth"`
	FFmpeg        *string  `toml:"ffmpeg"`
}

// DefaultVars returns the built-in flag defaults as kong variables.
func DefaultVars() kong.Vars {
	return kong.Vars{
		"target":    "-23.0",
		"tolerance": "0.5",
		"peak":      "-1.0",
		"maxiter":   "10",
		"lookahead": "3ms",
		"release":   "100ms",
		"bitdepth":  "0",
		"ffmpeg":    "ffmpeg",
	}
}

// LoadConfig folds a TOML defaults file over the built-in defaults.
// An empty path returns the defaults untouched. Unknown keys are
// rejected so a typo does not silently keep a default. Values are
// carried as strings; kong validates them when it parses the flags.
func LoadConfig(path string) (kong.Vars, error) {
	vars := DefaultVars()
	if path == "" {
		return vars, nil
	}

	var cfg fileConfig

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("cli: config %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("cli: config %s: unknown key %q", path, undecoded[0].String())
	}

	setFloat(vars, "target", cfg.Target)
	setFloat(vars, "tolerance", cfg.Tolerance)
	setFloat(vars, "peak", cfg.Peak)
	setInt(vars, "maxiter", cfg.MaxIterations)
	setString(vars, "lookahead", cfg.Lookahead)
	setString(vars, "release", cfg.Release)
	setInt(vars, "bitdepth", cfg.BitDepth)
	setString(vars, "ffmpeg", cfg.FFmpeg)

	return vars, nil
}

func setFloat(vars kong.Vars, key string, v *float64) {
	if v != nil {
		vars[key] = strconv.FormatFloat(*v, 'g', -1, 64)
	}
}

func setInt(vars kong.Vars, key string, v *int) {
	if v != nil {
		vars[key] = strconv.Itoa(*v)
	}
}

func setString(vars kong.Vars, key string, v *string) {
	if v != nil {
		vars[key] = *v
	}
}

// ConfigPath scans raw arguments for --config ahead of the kong parse,
// so the file's values can seed the parser's defaults. It sees only
// the plain --config and --config= spellings.
func ConfigPath(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}

	return ""
}
