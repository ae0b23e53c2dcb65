package main

import (
	"github.com/williamberman/symbolic-stack-machines/config"
	"github.com/williamberman/symbolic-stack-machines/explorer"
	"github.com/williamberman/symbolic-stack-machines/smt"
)

func explorerStrategy(s config.Strategy) explorer.Strategy {
	switch s {
	case config.StrategySolveAtEnd:
		return explorer.SolveAtEnd
	case config.StrategyIncremental:
		return explorer.Incremental
	default:
		return explorer.SolveAtEachBranch
	}
}

func smtConfig(cfg config.Config) smt.Config {
	return smt.Config{
		Timeout:      cfg.SolverTimeout,
		DumpScript:   cfg.DumpScript,
		DumpDir:      cfg.DumpDir,
		DumpCompress: cfg.DumpCompress,
	}
}
