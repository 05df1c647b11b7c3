// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

// Command sophia is a swiss-army knife for RDF quads: composable pipeline
// stages reading from files, URLs or stdin and writing to one or many
// destinations.
//
// Usage:
//
//	sophia parse data.trig ! merge --drop ! serialize -f turtle
//	sophia parse --files 'data/*.nt' ! null
//	sophia query 'SELECT ?s ?p ?o WHERE { ?s ?p ?o }' < data.nq
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/spf13/pflag"

	"github.com/pchampin/sophia-cli/internal/errors"
	"github.com/pchampin/sophia-cli/internal/ui"
	"github.com/pchampin/sophia-cli/pkg/quadstream"
	"github.com/pchampin/sophia-cli/pkg/source"
	"github.com/pchampin/sophia-cli/pkg/stages"
)

const version = "0.1.0"

const usage = `sophia - a command-line tool for RDF quads

Usage:
  sophia [GLOBAL OPTIONS] STAGE [STAGE OPTIONS] [! STAGE [STAGE OPTIONS]]...

Stages:
  parse (p)         read quads from files, URLs or stdin
  serialize (s)     write quads in an RDF serialization format
  filter (f)        keep quads matching term patterns
  map               rewrite quad components
  merge (m)         copy named-graph quads into the default graph
  dispatch (d)      write each named graph below a root IRI to its own file
  query (q)         evaluate a SPARQL query (SELECT, ASK, CONSTRUCT)
  canonicalize (c)  write canonical N-Quads (RDFC-1.0)
  absolutize (a)    resolve relative IRIs against a base
  relativize (r)    make IRIs relative to a base
  null (Z)          consume quads silently

Any stage but parse may start the command line, in which case quads are
read from stdin as N-Quads. Chain stages with '!'.

Global options:
  -v, --verbose    more logging (repeatable)
  -q, --quiet      less logging (repeatable)
      --config     alternate configuration file
      --no-color   disable colored output
      --version    print the version and exit
  -h, --help       print this help and exit
`

func main() {
	flags := pflag.NewFlagSet("sophia", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	verbose := flags.CountP("verbose", "v", "more logging")
	quiet := flags.CountP("quiet", "q", "less logging")
	configPath := flags.String("config", "", "alternate configuration file")
	noColor := flags.Bool("no-color", false, "disable colored output")
	showVersion := flags.Bool("version", false, "print the version and exit")
	help := flags.BoolP("help", "h", false, "print this help and exit")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := flags.Parse(os.Args[1:]); err != nil {
		errors.FatalError(errors.NewUsageError("Invalid arguments", err.Error(), "Run 'sophia --help' for usage"))
	}
	if *help {
		fmt.Print(usage)
		return
	}
	if *showVersion {
		fmt.Printf("sophia %s\n", version)
		return
	}

	ui.InitColors(*noColor)
	ui.InitLogging(*verbose, *quiet)

	args := flags.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(errors.ExitUsage)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		errors.FatalError(errors.NewUsageError("Cannot load configuration", err.Error(), ""))
	}
	source.SetAccept(cfg.Accept)

	env := &stages.Env{
		Logger:   slog.Default(),
		Prefixes: cfg.Prefixes,
		Stdout:   os.Stdout,
	}
	loader, err := source.NewContextLoader(cfg.CacheDir, env.Logger)
	if err != nil {
		env.Logger.Warn("config.cache.unavailable", "err", err)
	} else {
		env.ContextLoader = loader
	}

	errors.FatalError(run(env, args[0], args[1:]))
}

// run executes one command line: the parse stage standalone, or any sink
// stage fed with N-Quads from stdin.
func run(env *stages.Env, stage string, args []string) error {
	if stage == "parse" || stage == "p" {
		return stages.RunParse(env, args)
	}

	builder, ok := env.Registry()[stage]
	if !ok {
		return errors.NewUsageError(
			fmt.Sprintf("Unknown stage %q", stage),
			"",
			"Run 'sophia --help' for the list of stages",
		)
	}
	handler, err := builder(args)
	if err != nil {
		return err
	}

	reader, err := rdf.NewReader(bufio.NewReader(os.Stdin), rdf.FormatNQuads)
	if err != nil {
		return errors.NewInternalError("Cannot create stdin parser", err)
	}
	return handler(quadstream.FromReader(reader))
}
