package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NattKh/Expedition33ModManager/internal/config"
	"github.com/NattKh/Expedition33ModManager/internal/fetch"
	"github.com/NattKh/Expedition33ModManager/internal/installer"
	"github.com/NattKh/Expedition33ModManager/internal/logging"
	"github.com/NattKh/Expedition33ModManager/internal/service"
	"github.com/NattKh/Expedition33ModManager/internal/state"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "unniemods",
		Short:         "Manage UE4SS and mods for Expedition 33",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(newInstallLoaderCmd(opts))
	root.AddCommand(newInstallModCmd(opts))
	root.AddCommand(newListModsCmd(opts))
	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newOpenModsCmd(opts))
	root.AddCommand(newPrintSampleConfigCmd())
	root.AddCommand(newPrintCacheCmd(opts))
	return root
}

// setup loads config and wires the service for one command invocation.
func setup(cmd *cobra.Command, opts *rootOptions) (*service.Service, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	levelName := cfg.LogLevel
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	inst := installer.New(fetch.NewHTTPClient(cfg.HTTPTimeout(), cfg.UserAgent), logger).
		WithLoaderURL(cfg.LoaderURL)
	svc := service.New(inst, state.NewFileStore(cfg.CachePath), logger).
		WithDefaultTargetDir(cfg.TargetDir)
	return svc, nil
}

func newInstallLoaderCmd(opts *rootOptions) *cobra.Command {
	var targetDir string
	cmd := &cobra.Command{
		Use:     "install-ue4ss",
		Aliases: []string{"install-loader"},
		Short:   "Install or update UE4SS in the game Win64 directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			dir, err := svc.ResolveTargetDir(targetDir)
			if err != nil {
				return err
			}
			res, err := svc.InstallLoader(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("install UE4SS: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "UE4SS installed to %s (%s).\n", dir, res.Describe())
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetDir, "target-dir", "t", "", "path to the game Win64 directory")
	return cmd
}

func newInstallModCmd(opts *rootOptions) *cobra.Command {
	var (
		targetDir string
		zipPath   string
	)
	cmd := &cobra.Command{
		Use:   "install-mod [zip...]",
		Short: "Install mods from zip files into the Mods folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			archives := args
			if zipPath != "" {
				archives = append([]string{zipPath}, archives...)
			}
			if len(archives) == 0 {
				return fmt.Errorf("a mod zip is required (--zip-path or positional argument)")
			}
			svc, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			dir, err := svc.ResolveTargetDir(targetDir)
			if err != nil {
				return err
			}
			for _, a := range archives {
				res, err := svc.InstallMod(a, dir)
				if err != nil {
					return fmt.Errorf("install mod %s: %w", a, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Mod %s installed (%s).\n", a, res.Describe())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&zipPath, "zip-path", "z", "", "path to the mod zip file")
	cmd.Flags().StringVarP(&targetDir, "target-dir", "t", "", "path to the game Win64 directory")
	return cmd
}

func newListModsCmd(opts *rootOptions) *cobra.Command {
	var targetDir string
	cmd := &cobra.Command{
		Use:   "list-mods",
		Short: "List installed mods in the Mods folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			dir, err := svc.ResolveTargetDir(targetDir)
			if err != nil {
				return err
			}
			mods, err := svc.ListMods(dir)
			if err != nil {
				return fmt.Errorf("list mods: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(mods) == 0 {
				fmt.Fprintln(out, "No mods installed.")
				return nil
			}
			fmt.Fprintln(out, "Installed mods:")
			for _, m := range mods {
				fmt.Fprintf(out, "- %s\n", m)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetDir, "target-dir", "t", "", "path to the game Win64 directory")
	return cmd
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var targetDir string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List every directory under the game Win64 directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			dir, err := svc.ResolveTargetDir(targetDir)
			if err != nil {
				return err
			}
			dirs, err := svc.Scan(dir)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			for _, d := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetDir, "target-dir", "t", "", "path to the game Win64 directory")
	return cmd
}

func newOpenModsCmd(opts *rootOptions) *cobra.Command {
	var (
		targetDir string
		printOnly bool
	)
	cmd := &cobra.Command{
		Use:   "open-mods",
		Short: "Create the Mods folder if needed and open it in the file explorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			dir, err := svc.ResolveTargetDir(targetDir)
			if err != nil {
				return err
			}
			modsDir, err := svc.ModsDir(dir)
			if err != nil {
				return err
			}
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), modsDir)
				return nil
			}
			return openInExplorer(modsDir)
		},
	}
	cmd.Flags().StringVarP(&targetDir, "target-dir", "t", "", "path to the game Win64 directory")
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the folder path instead of opening it")
	return cmd
}

func newPrintSampleConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-sample-config",
		Short: "Print a sample config file to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(config.Sample())
		},
	}
}

func newPrintCacheCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "print-cache",
		Short: "Print the remembered settings cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			c, err := svc.Cache()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		},
	}
}
