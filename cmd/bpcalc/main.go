// Command bpcalc evaluates arithmetic expressions with the calc grammar.
//
// Expressions come from the command line, or one per line from stdin when
// none are given.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/chronos-tachyon/go-backparse/bptrace"
	"github.com/chronos-tachyon/go-backparse/calc"
)

type options struct {
	trace    bool
	listing  bool
	logLevel string
	exprs    []string
}

func newApp(opts *options) *kingpin.Application {
	app := kingpin.New("bpcalc", "Evaluate arithmetic expressions with a backtracking parser.")
	app.HelpFlag.Short('h')
	app.Flag("trace", "log every VM instruction (implies --log-level=debug)").BoolVar(&opts.trace)
	app.Flag("listing", "print the compiled grammar before evaluating").BoolVar(&opts.listing)
	app.Flag("log-level", "logging level").Default("warn").
		EnumVar(&opts.logLevel, "trace", "debug", "info", "warn", "error")
	app.Arg("expression", "expressions to evaluate; read from stdin if absent").StringsVar(&opts.exprs)
	return app
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	app := newApp(&opts)
	app.ErrorWriter(stderr)
	app.UsageWriter(stderr)
	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "bpcalc: %v\n", err)
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "bpcalc: %v\n", err)
		return 2
	}
	if opts.trace && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	c := calc.New()
	if opts.listing {
		if _, err := c.Grammar().Disassemble(stdout); err != nil {
			log.WithError(err).Error("failed to write listing")
			return 1
		}
		fmt.Fprintln(stdout)
	}

	eval := func(src string) bool {
		var tr *bptrace.Tracer
		if opts.trace {
			tr = bptrace.New(log.WithField("expr", src))
			c.SetTracer(tr)
		}
		v, err := c.Eval(src)
		if tr != nil {
			log.WithFields(tr.Stats().Fields()).WithField("expr", src).Info("parse finished")
		}
		if err != nil {
			log.WithError(err).WithField("expr", src).Error("evaluation failed")
			return false
		}
		fmt.Fprintln(stdout, strconv.FormatFloat(v, 'g', -1, 64))
		return true
	}

	ok := true
	if len(opts.exprs) > 0 {
		for _, src := range opts.exprs {
			ok = eval(src) && ok
		}
	} else {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			src := strings.TrimSpace(scanner.Text())
			if src == "" {
				continue
			}
			ok = eval(src) && ok
		}
		if err := scanner.Err(); err != nil {
			log.WithError(errors.Wrap(err, "stdin")).Error("read failed")
			return 1
		}
	}
	if !ok {
		return 1
	}
	return 0
}
