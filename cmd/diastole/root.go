package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/internal/config"
	"github.com/aretw0/diastole/pkg/catalog"
	"github.com/aretw0/diastole/pkg/domain"
)

// app is the state shared by every subcommand once the config is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *diastole.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		configPath string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:   "diastole",
		Short: "Diastole grades left ventricular diastolic function",
		Long: `Diastole walks published echocardiography guidelines (ASE/EACVI 2016, BSE 2024,
Mayo Clinic 2025) as decision graphs and reports the diastolic function grade.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if debug {
				cfg.Log.Level = "debug"
			}
			return a.init(cfg, debug)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newListCmd(a),
		newRunCmd(a),
		newGraphCmd(a),
		newValidateCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) init(cfg *config.Config, debug bool) error {
	a.cfg = cfg
	a.logger = cfg.Logger()

	opts := []diastole.Option{
		diastole.WithLogger(a.logger),
		diastole.WithMaxChain(cfg.Engine.MaxChain),
	}
	if debug {
		opts = append(opts, diastole.WithLifecycleHooks(createDebugHooks(a.logger)))
	}
	if cfg.Catalog != "" {
		overrides, err := catalog.LoadFile(cfg.Catalog)
		if err != nil {
			return fmt.Errorf("failed to load result catalog: %w", err)
		}
		opts = append(opts, diastole.WithCatalog(catalog.Default().Merge(overrides)))
		a.logger.Debug("Result catalog overrides loaded", "path", cfg.Catalog, "keys", len(overrides.Keys()))
	}
	a.engine = diastole.New(opts...)
	return nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter Node", "node_id", e.NodeID, "type", e.NodeType)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Leave Node", "node_id", e.NodeID, "answer", e.Answer)
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluateEvent) {
			logger.Debug("Evaluate", "node_id", e.NodeID, "next", e.Next, "writes", len(e.Writes))
		},
	}
}
