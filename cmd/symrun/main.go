// Command symrun drives the symbolic execution engine's two bundled
// demonstration programs end to end: parse a program, seed symbolic
// calldata, explore every path, and report whether the program's
// post-condition holds across all of them. Flag and logging wiring
// follows cmd/sneller's convention of plain-stdlib flag parsing with
// a package-level log.Logger.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/williamberman/symbolic-stack-machines/config"
	"github.com/williamberman/symbolic-stack-machines/internal/xlog"
)

var (
	dashExample    string
	dashConfig     string
	dashStrategy   string
	printSolutions bool
)

func init() {
	flag.StringVar(&dashExample, "example", "safe-add", "which bundled example to run: safe-add or primality")
	flag.StringVar(&dashConfig, "config", "", "path to a symrun.yaml config file (defaults built in if omitted)")
	flag.StringVar(&dashStrategy, "strategy", "", "override the config's exploration strategy: solve-at-each-branch, solve-at-end, or incremental")
	flag.BoolVar(&printSolutions, "v", false, "print a concrete counterexample when the post-condition is violated")
}

func main() {
	flag.Parse()
	xlog.Init()

	cfg := config.Default()
	if dashConfig != "" {
		var err error
		cfg, err = config.Load(dashConfig)
		if err != nil {
			log.Fatalf("symrun: %v", err)
		}
	}
	if dashStrategy != "" {
		cfg.Strategy = config.Strategy(dashStrategy)
	}

	var err error
	switch dashExample {
	case "safe-add":
		err = runSafeAdd(cfg)
	case "primality":
		err = runPrimality(cfg)
	default:
		err = fmt.Errorf("unknown -example %q (want safe-add or primality)", dashExample)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
