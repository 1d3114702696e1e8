package cliapp

import "flag"

const versionString = "1.0.0"
const defaultConfigPath = "./stacklens.toml"

type cliOptions struct {
	configPath string
	root       string
	depth      int
	project    string
	noUI       bool
	jsonOut    bool
	output     string
	watch      bool
	history    bool
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("stacklens", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.root, "root", "", "Directory to scan for projects (overrides config)")
	fs.IntVar(&opts.depth, "depth", 0, "Maximum project discovery depth (overrides config)")
	fs.StringVar(&opts.project, "project", "", "Count a single project directory, skipping discovery")
	fs.BoolVar(&opts.noUI, "no-ui", false, "Disable the terminal UI and print plain output")
	fs.BoolVar(&opts.jsonOut, "json", false, "Emit the report as JSON (implies --no-ui)")
	fs.StringVar(&opts.output, "output", "", "Write the report to a file instead of stdout")
	fs.BoolVar(&opts.watch, "watch", false, "Rescan the selected project on file changes")
	fs.BoolVar(&opts.history, "history", false, "Force snapshot history on for this run")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	if opts.jsonOut {
		opts.noUI = true
	}
	return opts, nil
}
