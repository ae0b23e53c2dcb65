// Package config loads the driver's YAML configuration file. Following
// the teacher's CLI convention, the file only supplies defaults; of its
// fields, only Strategy has a command-line flag that overrides it
// (-strategy, wired in cmd/symrun).
package config

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"
)

// Strategy names a path-exploration strategy by its config-file spelling.
type Strategy string

const (
	StrategySolveAtEachBranch Strategy = "solve-at-each-branch"
	StrategySolveAtEnd        Strategy = "solve-at-end"
	StrategyIncremental       Strategy = "incremental"
)

// Config is the driver's full set of tunables.
type Config struct {
	// Strategy picks which of the three path-feasibility disciplines
	// the explorer uses. Defaults to solve-at-end.
	Strategy Strategy `json:"strategy"`

	// SolverTimeout bounds each individual solver invocation. Defaults
	// to 60s per the design notes.
	SolverTimeout time.Duration `json:"solverTimeout"`

	// DumpScript, when true, archives every solver invocation as an
	// SMT-LIB2 script under DumpDir.
	DumpScript bool `json:"dumpScript"`

	// DumpDir is where scripts are archived; the system temp directory
	// when empty.
	DumpDir string `json:"dumpDir"`

	// DumpCompress zstd-compresses archived scripts.
	DumpCompress bool `json:"dumpCompress"`

	// NumSymbolicCalldataBytes sizes the symbolic argument region built
	// by calldata.Symbolic for the driver's example programs.
	NumSymbolicCalldataBytes int `json:"numSymbolicCalldataBytes"`
}

// Default returns the engine's built-in defaults, used whenever no
// config file is supplied.
func Default() Config {
	return Config{
		Strategy:                 StrategySolveAtEnd,
		SolverTimeout:            60 * time.Second,
		NumSymbolicCalldataBytes: 32,
	}
}

// Load reads and parses a YAML config file, starting from Default()
// and overwriting only the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
