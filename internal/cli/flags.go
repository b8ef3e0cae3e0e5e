package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (default ~/.config/trail/config.yaml)" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// TrackCommand records visits to the paths or URLs given as arguments.
type TrackCommand struct {
	Name   string   `long:"name" description:"Route name stored with the visit"`
	Params []string `long:"param" description:"Route param as key=value (repeatable)"`

	globals *GlobalFlags
	version string
}

// QueryCommand lists records matching a selector.
type QueryCommand struct {
	Limit int  `long:"limit" description:"Maximum results (0 for all)" default:"10"`
	IDs   bool `long:"ids" description:"Print paths only"`

	globals *GlobalFlags
	version string
}

// RemoveCommand deletes records matching a selector.
type RemoveCommand struct {
	All   bool `long:"all" description:"Required to remove every record (empty selector)"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	in      io.Reader // confirmation input; nil means os.Stdin
}

// PruneCommand removes records not visited within a retention period.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Remove records last visited longer ago than this (e.g., 90d, 2w, 12h)" default:"90d"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows store statistics and backend health.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ServeCommand runs the HTTP ingest server in the foreground.
type ServeCommand struct {
	Host     string `long:"host" description:"Override listen host"`
	Port     int    `long:"port" description:"Override listen port"`
	LogLevel string `long:"log-level" description:"Override log level"`

	globals *GlobalFlags
	version string
}
