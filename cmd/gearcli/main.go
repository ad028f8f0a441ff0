// Command gearcli asks for one set of vehicle readings and prints the recommended gear.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gear-backend/internal/collector"
	"gear-backend/internal/gearbox"
	"gear-backend/internal/logging"
	"gear-backend/internal/presenter"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gearcli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "print the matched rule, best-acceleration gear and scores")
	logLevel := fs.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := logging.Component(logging.New(stderr, *logLevel, logging.FormatConsole), "gearcli")

	reading, err := collector.NewPrompter(stdin, stdout).Collect()
	if err != nil {
		fmt.Fprintln(stdout)
		fmt.Fprintf(stderr, "Try that again... %v\n", err)
		logger.Debug().Err(err).Str("field", collector.FieldOf(err)).Msg("invalid input")
		return 1
	}

	decision := gearbox.NewSelector(gearbox.DefaultDriveTrain()).Decide(reading)
	logger.Debug().Int("gear", decision.Gear).Str("rule", decision.Rule).Msg("gear decided")

	write := func() error { return presenter.Gear(stdout, decision.Gear) }
	if *verbose {
		write = func() error { return presenter.Decision(stdout, reading, decision) }
	}
	if err := write(); err != nil {
		logger.Error().Err(err).Msg("write failed")
		return 1
	}
	return 0
}
