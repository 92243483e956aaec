// Package main provides the patchmo binary entry point.
// patchmo turns a marked range of git commits into numbered patch files
// and suggests the spec file lines needed to declare and apply them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/patchmo/config"
	"github.com/c360studio/patchmo/errs"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "patchmo"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reportError prints "error: <message>" and the hint, if any, on its own
// line in parentheses.
func reportError(w io.Writer, err error) {
	var e *errs.Error
	if errors.As(err, &e) {
		fmt.Fprintf(w, "error: %s\n", e.Error())
		if e.Hint != "" {
			fmt.Fprintf(w, "(%s)\n", e.Hint)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	debug      bool
}

func rootCmd() *cobra.Command {
	var (
		flags   globalFlags
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "patchmo [flags] SOURCE DEST",
		Short: "Generate numbered patches for RPM builds",
		Long: `patchmo exports the commits between the patchmo.START and patchmo.END
tags of the SOURCE git checkout as numbered patch files in DEST, continuing
after the highest number already there. It then compares the patches in DEST
with the Patch and %patch lines of the .spec file in DEST and prints the lines
that are missing.

The spec file is never modified.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, flags, args[1])
			if err != nil {
				return err
			}
			app.preview = preview
			return app.Run(cmd.Context(), args[0], args[1])
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug diagnostics")
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML or TOML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Also print the spec file changes as a diff")

	cmd.AddCommand(reconcileCmd(&flags))
	cmd.AddCommand(nextCmd(&flags))
	cmd.AddCommand(configCmd(&flags))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func reconcileCmd(flags *globalFlags) *cobra.Command {
	var preview bool
	cmd := &cobra.Command{
		Use:   "reconcile DEST",
		Short: "Compare the patches in DEST with its spec file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, *flags, args[0])
			if err != nil {
				return err
			}
			app.preview = preview
			return app.Reconcile(args[0])
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "Also print the spec file changes as a diff")
	return cmd
}

func nextCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "next DEST",
		Short: "Print the next free patch number in DEST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, *flags, args[0])
			if err != nil {
				return err
			}
			return app.Next(args[0])
		},
	}
}

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create patchmo configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [DEST]",
		Short: "Print the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := ""
			if len(args) == 1 {
				dest = args[0]
			}
			app, err := setup(cmd, *flags, dest)
			if err != nil {
				return err
			}
			return app.cfg.Encode(cmd.OutOrStdout())
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init DEST",
		Short: "Write the effective configuration to DEST/.patchmo.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, *flags, args[0])
			if err != nil {
				return err
			}
			path := config.ProjectConfigPath(args[0])
			if _, err := os.Stat(path); err == nil && !force {
				return errs.New(errs.KindConfig, "%s already exists", path).
					WithHint("Use --force to overwrite it").
					WithRef(path)
			}
			if err := app.cfg.SaveToFile(path); err != nil {
				return errs.Wrap(errs.KindIO, err, "write config").WithRef(path)
			}
			app.logger.Info("Wrote project config", "path", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project config")
	cmd.AddCommand(initCmd)

	return cmd
}

// setup loads configuration for dest and builds the App with a logger at
// the configured level.
func setup(cmd *cobra.Command, flags globalFlags, dest string) (*App, error) {
	stderr := cmd.ErrOrStderr()

	bootstrap := newLogger(stderr, levelFor(flags, ""))
	cfg, err := config.NewLoader(bootstrap).Load(dest, flags.configPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(stderr, levelFor(flags, cfg.Log.Level))
	return NewApp(cfg, logger, cmd.OutOrStdout()), nil
}
