// Package cli implements the trail command line.
package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Track  *TrackCommand
	Query  *QueryCommand
	Remove *RemoveCommand
	Prune  *PruneCommand
	Status *StatusCommand
	Serve  *ServeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "trail"
	parser.LongDescription = "Record page visits and query them ranked by frequency and recency."

	cmds := &commands{
		Track:  &TrackCommand{globals: &globals, version: version},
		Query:  &QueryCommand{globals: &globals, version: version},
		Remove: &RemoveCommand{globals: &globals, version: version},
		Prune:  &PruneCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
		Serve:  &ServeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("track", "Record a page visit", "Record one visit for each given path or URL.", cmds.Track)
	parser.AddCommand("query", "List visited pages", "List visited pages matching a selector (\"\", group, @type, group@type or /path), best first.", cmds.Query)
	parser.AddCommand("remove", "Remove visited pages", "Remove every record matching a selector. Destructive operation with safety prompt.", cmds.Remove)
	parser.AddCommand("prune", "Remove stale records", "Remove records whose last visit is older than a duration.", cmds.Prune)
	parser.AddCommand("status", "Show store statistics", "Show record counts, storage backend health and configuration summary.", cmds.Status)
	parser.AddCommand("serve", "Start the ingest server", "Start the local HTTP ingest server.", cmds.Serve)

	return parser, &globals, cmds
}

// Run is the main entry point for the trail CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("trail %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
