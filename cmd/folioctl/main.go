package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

var (
	ErrMissingCommand  = errors.New("missing command")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrDBAlreadyExists = errors.New("database file already exists")
	ErrDBNotFound      = errors.New("database file not found")
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, output io.Writer) error {
	fs := flag.NewFlagSet("folioctl", flag.ContinueOnError)
	fs.SetOutput(output)

	dbPathFlag := fs.String("dbpath", "app.db", "Path to the SQLite database file")

	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: folioctl [global options] <command> [arguments]")
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Commands:")
		fmt.Fprintln(output, "  init-db               Create the database file and apply the schema")
		fmt.Fprintln(output, "  promote <email>       Grant the admin role to an existing user")
		fmt.Fprintln(output, "  demote <email>        Revert a user to the regular role")
		fmt.Fprintln(output, "  dump-config           Print the default configuration as TOML")
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Global options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return ErrMissingCommand
	}

	command, commandArgs := rest[0], rest[1:]

	switch command {
	case "init-db":
		return handleInitDB(*dbPathFlag, output)
	case "promote":
		return handleSetRole(*dbPathFlag, commandArgs, true, output)
	case "demote":
		return handleSetRole(*dbPathFlag, commandArgs, false, output)
	case "dump-config":
		return handleDumpConfig(output)
	default:
		fs.Usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}
