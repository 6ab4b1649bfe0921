package main

import (
	"SubdirFinder/internal"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "subdirs",
		Usage:     "List subdirectories beneath a directory",
		ArgsUsage: "DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Regular expression matched against directory names at every level",
			},
			&cli.IntFlag{
				Name:  "max-depth",
				Usage: "Levels to descend (1 - immediate subdirectories only)",
			},
			&cli.BoolFlag{
				Name:  "recursive",
				Usage: "Descend without limit (capped by --max-depth when set)",
			},
			&cli.IntFlag{
				Name:  "levels",
				Usage: "Exact depth count; cannot be combined with --recursive",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file with options (filter, maxDepth, levels, recursive, threads, archives); flags override it",
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "List directories inside DIR when it is an archive (.zip,.tar,.7z,...)",
			},
			&cli.IntFlag{
				Name:  "threads",
				Usage: "Max concurrent directory reads (default scales with CPU)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Global timeout for scan (e.g. 10s, 1m)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as a JSON array",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a spinner with the number of directories read",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "warn",
			},
		},
		Action: func(c *cli.Context) error {
			internal.InitLogger(c.String("logfile"), c.String("log-level"))

			// ctx with timeout + OS signals
			base := context.Background()
			var cancel context.CancelFunc
			if t := c.Duration("timeout"); t > 0 {
				base, cancel = context.WithTimeout(base, t)
			} else {
				base, cancel = context.WithCancel(base)
			}
			defer cancel()

			ctx, stop := signal.NotifyContext(base, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts, err := optionsFromFlags(c)
			if err != nil {
				return exitErr(err)
			}

			var bar *progressbar.ProgressBar
			if c.Bool("progress") {
				bar = progressbar.NewOptions(-1,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("reading directories"),
					progressbar.OptionSpinnerType(14),
					progressbar.OptionClearOnFinish(),
				)
				opts.OnDir = func(string) { _ = bar.Add(1) }
			}

			var stats internal.ScanStats
			stats.Start()
			dirs, err := internal.NewDirScanner(&stats).Scan(ctx, c.Args().First(), opts)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				if ctx.Err() != nil {
					logrus.Warn("Scan cancelled")
				}
				return exitErr(err)
			}

			logrus.WithFields(logrus.Fields{
				"elapsed": stats.Elapsed(),
				"read":    stats.DirsRead.Load(),
				"found":   len(dirs),
			}).Info("Scan finished")

			return printDirs(out, dirs, c.Bool("json"))
		},
	}
}

// optionsFromFlags layers explicitly set flags over the optional config file.
// Depth conflicts are checked across both sources before any flag wins.
func optionsFromFlags(c *cli.Context) (internal.ScanOptions, error) {
	var opts internal.ScanOptions
	var keys internal.ConfigKeys
	if path := c.String("config"); path != "" {
		var err error
		if opts, keys, err = internal.LoadConfigKeys(path); err != nil {
			return opts, err
		}
	}

	levelsSet := keys.Has("levels") || c.IsSet("levels")
	maxDepthSet := keys.Has("maxDepth") || c.IsSet("max-depth")
	recursiveSet := keys.Has("recursive") || c.IsSet("recursive")
	switch {
	case levelsSet && recursiveSet:
		return opts, internal.LevelsAndRecursive()
	case levelsSet && maxDepthSet:
		return opts, internal.InvalidRange("please specify one of: --levels | --max-depth")
	}

	if c.IsSet("filter") {
		opts.Filter = c.String("filter")
	}
	if c.IsSet("threads") {
		opts.Threads = c.Int("threads")
	}
	if c.IsSet("archives") {
		opts.Archives = c.Bool("archives")
	}

	switch {
	case c.IsSet("levels"):
		if c.Int("levels") <= 0 {
			return opts, internal.InvalidRange("levels must be a non-negative non-zero integer")
		}
		opts.Levels = c.Int("levels")
	case c.IsSet("max-depth"):
		if c.Int("max-depth") <= 0 {
			return opts, internal.InvalidRange("max-depth must be a non-negative non-zero integer")
		}
		opts.Levels, opts.Recursive = internal.ResolveDepth(c.Int("max-depth"), c.Bool("recursive"))
	case c.IsSet("recursive"):
		// a maxDepth from the config file still caps the descent
		if opts.Levels == 0 {
			opts.Recursive = c.Bool("recursive")
		}
	}
	return opts, nil
}

func printDirs(out io.Writer, dirs []string, asJSON bool) error {
	if asJSON {
		if dirs == nil {
			dirs = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dirs)
	}
	for _, d := range dirs {
		if _, err := fmt.Fprintln(out, d); err != nil {
			return err
		}
	}
	return nil
}

// exitErr maps configuration mistakes to exit code 2 and everything else to 1.
func exitErr(err error) error {
	switch {
	case internal.IsKind(err, internal.KindMissingArgument),
		internal.IsKind(err, internal.KindInvalidType),
		internal.IsKind(err, internal.KindInvalidRange):
		return cli.Exit(err.Error(), 2)
	}
	return cli.Exit(err.Error(), 1)
}
