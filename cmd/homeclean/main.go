package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vbonduro/homeclean/internal/backup"
	"github.com/vbonduro/homeclean/internal/config"
	"github.com/vbonduro/homeclean/internal/logging"
	"github.com/vbonduro/homeclean/internal/web"
)

// Set at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const appName = "homeclean"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags override the matching config values when set.
type flags struct {
	dbPath     string
	backupPath string
	logLevel   string
	logFormat  string
}

func (f *flags) apply(cfg *config.Config) {
	if f.dbPath != "" {
		cfg.DBPath = f.dbPath
	}
	if f.backupPath != "" {
		cfg.BackupPath = f.backupPath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Household cleaning and maintenance tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	pf.StringVar(&f.backupPath, "backup-dir", "", "Backup directory (overrides BACKUP_PATH)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format: json or text (overrides LOG_FORMAT)")

	cmd.AddCommand(
		serveCmd(&f),
		exportCmd(&f),
		importCmd(&f),
		backupCmd(&f),
		statusCmd(&f),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

func serveCmd(f *flags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(ctx context.Context, a *app) error {
				if addr != "" {
					a.cfg.ListenAddr = addr
				}
				server := web.NewServer(a.service, a.repos, a.metrics, a.store, a.logger)
				return server.ListenAndServe(ctx, a.cfg.ListenAddr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides LISTEN_ADDR)")
	return cmd
}

func exportCmd(f *flags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write every collection to a file, or stdout when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			bf, err := resolveFormat(format, path)
			if err != nil {
				return err
			}
			return withApp(cmd, f, func(ctx context.Context, a *app) error {
				if path == "" {
					return a.service.Export(ctx, cmd.OutOrStdout(), bf)
				}
				return exportFile(ctx, a, path, bf)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Document format: json or yaml (default from file extension)")
	return cmd
}

func importCmd(f *flags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collections present in a backup document; use - for stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			bf, err := resolveFormat(format, path)
			if err != nil {
				return err
			}
			return withApp(cmd, f, func(ctx context.Context, a *app) error {
				var in io.Reader = cmd.InOrStdin()
				if path != "-" {
					file, err := os.Open(path)
					if err != nil {
						return fmt.Errorf("failed to open %s: %w", path, err)
					}
					defer func() { _ = file.Close() }()
					in = file
				}
				if err := a.service.Import(ctx, in, bf); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Document format: json or yaml (default from file extension)")
	return cmd
}

func backupCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Save a timestamped snapshot in the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(ctx context.Context, a *app) error {
				key, err := a.service.Backup(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved backups, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, f, func(ctx context.Context, a *app) error {
					entries, err := a.service.ListBackups(ctx)
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
					for _, e := range entries {
						fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Key, e.Size, e.ModTime.UTC().Format("2006-01-02 15:04:05"))
					}
					return tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "delete <key>",
			Short: "Remove a saved backup",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, f, func(ctx context.Context, a *app) error {
					if err := a.service.DeleteBackup(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "restore <key>",
			Short: "Import a saved backup",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, f, func(ctx context.Context, a *app) error {
					if err := a.service.Restore(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

func statusCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List parts that are overdue or due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(ctx context.Context, a *app) error {
				due, err := a.service.DueParts(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(due) == 0 {
					fmt.Fprintln(out, "nothing due")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STATUS\tAREA\tITEM\tPART\tOVERDUE")
				for _, d := range due {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", d.Label, d.AreaName, d.ItemName, d.Part.Name, d.Overdue)
				}
				return tw.Flush()
			})
		},
	}
}

// exportFile writes the export next to path and renames it into place, so a
// failed export leaves any existing file untouched.
func exportFile(ctx context.Context, a *app, path string, f backup.Format) error {
	out, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmp := out.Name()
	defer func() { _ = os.Remove(tmp) }()

	if err := a.service.Export(ctx, out, f); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func resolveFormat(flag, path string) (backup.Format, error) {
	if flag != "" {
		return backup.ParseFormat(flag)
	}
	return backup.FormatFromPath(path), nil
}

// withApp loads configuration, sets up logging and opens the application
// for the duration of fn. The context is cancelled on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, f *flags, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	f.apply(cfg)

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.FixedNow != nil {
		logger.Warn("test mode clock pinned", "now", cfg.FixedNow)
	}
	return fn(ctx, a)
}
