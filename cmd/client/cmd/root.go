package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/app/client"
	"studynotes/internal/app/client/config"
	envs "studynotes/internal/config"
	"studynotes/internal/utils/logger"
)

var (
	cfgFile   string
	serverURL string
	debug     bool
	app       *client.App
)

var rootCmd = &cobra.Command{
	Use:   "studynotes",
	Short: "StudyNotes - конспекты лекций и видео с офлайн-кэшем",
	Long: `StudyNotes хранит заметки локально и синхронизирует их с сервером.

Заметки можно создавать офлайн, генерировать по ним конспекты, тесты,
карточки и интеллект-карты, а также собирать заметки из субтитров YouTube.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		if errors.Is(err, client.ErrNotAuthorized) {
			fmt.Fprintln(os.Stderr, "Выполните: studynotes auth login")
		}
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoad(cfgFile)
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if debug {
		cfg.Env = envs.EnvDev
	}

	log := logger.New(cfg.Env)

	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(types.WithApp(cmd.Context(), app))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "подробные логи")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера host:port")
}
