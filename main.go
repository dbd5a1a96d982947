// Command nef3 evaluates local-map construction scripts.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/config"
)

// Build-time variables injected via ldflags.
var Version = "dev"

// errInvalid is returned by check when a script fails.
var errInvalid = errors.New("script produced errors or invalid local maps")

// rootOptions holds global CLI flags.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
	Indexed    bool
	Verbose    bool
	Output     string
}

// cli carries initialized dependencies through the command tree.
type cli struct {
	opts rootOptions
	cfg  *config.Config
	log  *zap.Logger
	app  *App
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nef3:", err)
		os.Exit(1)
	}
}

// newRootCommand creates the root cobra command with all global flags and
// subcommands.
func newRootCommand() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:     "nef3",
		Short:   "Build and check Nef polyhedron vertex local maps",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&c.opts.ConfigPath, "config", "c", "", "config file path (default: NEF3_* environment only)")
	pf.StringVar(&c.opts.LogLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.BoolVar(&c.opts.Indexed, "indexed", false, "use the indexed constructor variant")
	pf.BoolVarP(&c.opts.Verbose, "verbose", "v", false, "enable development logging")

	cmd.AddCommand(c.runCommand(), c.checkCommand(), c.previewCommand())
	return cmd
}

// setup loads config, applies flag overrides and builds the logger and app.
func (c *cli) setup(cmd *cobra.Command) error {
	var err error
	if c.opts.ConfigPath != "" {
		c.cfg, err = config.Load(c.opts.ConfigPath)
	} else {
		c.cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.cfg.Log.Level = c.opts.LogLevel
	}
	if flags.Changed("indexed") {
		c.cfg.Constructor.Indexed = c.opts.Indexed
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log, err = newLogger(c.cfg.Log.Level, c.opts.Verbose)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	c.app = NewAppWithConfig(c.cfg, c.log)
	return nil
}

// newLogger builds a production logger at level, or a development logger
// when verbose is set.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func readScript(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Evaluate a script and print per-vertex summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readScript(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), c.app.Evaluate(src))
		},
	}
}

func (c *cli) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <script>",
		Short: "Evaluate a script and fail unless every local map is valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readScript(args[0])
			if err != nil {
				return err
			}
			res := c.app.Evaluate(src)
			out := cmd.OutOrStdout()
			for _, e := range res.Errors {
				fmt.Fprintf(out, "error: line %d: %s\n", e.Line, e.Message)
			}
			for _, v := range res.Vertices {
				for _, p := range v.Problems {
					fmt.Fprintf(out, "invalid: %s: %s\n", v.Name, p)
				}
			}
			if !res.Valid() {
				return errInvalid
			}
			fmt.Fprintf(out, "ok: %d vertices\n", len(res.Vertices))
			return nil
		},
	}
}

func (c *cli) previewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <script>",
		Short: "Evaluate a script and write preview meshes as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readScript(args[0])
			if err != nil {
				return err
			}
			res := c.app.Preview(src)
			if c.opts.Output == "" || c.opts.Output == "-" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			f, err := os.Create(c.opts.Output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := writeJSON(f, res); err != nil {
				f.Close()
				return fmt.Errorf("write output: %w", err)
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&c.opts.Output, "output", "o", "-", "output file, - for stdout")
	return cmd
}
