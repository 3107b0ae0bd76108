package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/llxisdsh/chainmap"
	"github.com/spf13/cobra"
)

type options struct {
	buckets    int
	hash       string
	input      string
	format     string
	logLevel   string
	logHandler string
}

type app struct {
	opts   options
	log    *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		log:    slog.New(slog.NewTextHandler(stderr, nil)),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chainmap [command]",
		Short: "inspect separate-chaining hash tables",
		Long: `
  Loads key/value pairs into a fixed-size, prime-bucketed chaining hash
  table and prints its layout.
`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(a.stderr, a.opts.logLevel, a.opts.logHandler)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.IntVar(&a.opts.buckets, "buckets", 11, "requested bucket count, rounded up to a prime")
	pf.StringVar(&a.opts.hash, "hash", "default", "hash strategy: default, poly, fnv1a or xxhash")
	pf.StringVar(&a.opts.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (env LOG_LEVEL)")
	pf.StringVar(&a.opts.logHandler, "log-handler", envOr("LOG_HANDLER", devHandler), "log handler: dev, text or json (env LOG_HANDLER)")

	for _, cmd := range []*cobra.Command{a.dumpCmd(), a.statsCmd()} {
		f := cmd.Flags()
		f.StringVarP(&a.opts.input, "input", "i", "-", "input file, - for stdin")
		f.StringVar(&a.opts.format, "format", "", "input format: text or yaml (default: from the file extension)")
		root.AddCommand(cmd)
	}
	root.AddCommand(a.hashCmd())
	return root
}

func (a *app) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "print every bucket's chain",
		Long: `
  Prints one line per bucket: "<i>: " followed by "(key, value) " for each
  entry in chain order, most recent insertion first.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.loadTable(cmd)
			if err != nil {
				return err
			}
			return errors.Wrap(tbl.Dump(cmd.OutOrStdout()), "writing dump")
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "print table statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.loadTable(cmd)
			if err != nil {
				return err
			}
			s := tbl.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, s.ToString())
			fmt.Fprintf(out, "arena: %s in %d chunks\n", humanize.IBytes(s.ArenaBytes), s.ArenaChunks)
			return nil
		},
	}
}

func (a *app) hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash STRING...",
		Short: "print the hash and bucket of each argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hashByName(a.opts.hash)
			if err != nil {
				return err
			}
			buckets := uint64(chainmap.NextPrime(a.opts.buckets))
			out := cmd.OutOrStdout()
			for _, s := range args {
				h := hash(s)
				fmt.Fprintf(out, "%q\thash=%#016x\tbucket=%d\n", s, h, h%buckets)
			}
			return nil
		},
	}
}

// hashByName resolves a --hash value. "default" is the table's own default
// for string keys.
func hashByName(name string) (func(string) uint64, error) {
	switch strings.ToLower(name) {
	case "default", "fnv1a", "fnv":
		return chainmap.FNV1a, nil
	case "poly", "polynomial":
		return chainmap.PolynomialHash, nil
	case "xxhash", "xxh64":
		return chainmap.XXHash, nil
	}
	return nil, errors.Wrapf(ErrUnknownHash, "%q", name)
}

// loadTable reads the input pairs and inserts them in order. Later
// duplicates are ignored, as Insert never overwrites.
func (a *app) loadTable(cmd *cobra.Command) (*chainmap.Table[string, string], error) {
	hash, err := hashByName(a.opts.hash)
	if err != nil {
		return nil, err
	}
	pairs, err := a.readInput(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	tbl := chainmap.New[string, string](a.opts.buckets,
		chainmap.WithHasher(hash),
		chainmap.WithArenaSizeHint[string](len(pairs)))
	for _, p := range pairs {
		if it, inserted := tbl.Insert(p.Key, p.Value); !inserted {
			a.log.Warn("duplicate key ignored", "key", p.Key, "kept", it.Value(), "dropped", p.Value)
		}
	}
	a.log.Debug("table loaded",
		"pairs", len(pairs),
		"size", tbl.Size(),
		"buckets", tbl.BucketCount(),
		"hash", a.opts.hash,
		"load_factor", tbl.LoadFactor())
	return tbl, nil
}
