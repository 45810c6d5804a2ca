package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/manager"
)

// app - общее состояние команд: конфиг и рабочее пространство,
// собранные в PersistentPreRunE.
type app struct {
	configPath string
	cfg        config.Config
	ws         *manager.Workspace
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "In-memory task board with users and priority filters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $TASKBOARD_CONFIG or <user config dir>/taskboard/config.yaml)")

	root.AddCommand(
		newServeCommand(a),
		newShellCommand(a),
		newInspectCommand(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	opts := []manager.Option{}
	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile, manager.NewID)
		if err != nil {
			return err
		}
		opts = append(opts, manager.WithSeed(seed))
		logger.Info(ctx, "Загружен seed-файл", "path", cfg.SeedFile, "tasks", len(seed))
	}
	a.ws = manager.NewWorkspace(opts...)
	return nil
}

// Execute запускает корневую команду с переданным контекстом.
func Execute(ctx context.Context) error {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("taskboard: %w", err)
	}
	return nil
}
