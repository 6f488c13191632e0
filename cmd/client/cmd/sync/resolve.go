package sync

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	domainsync "studynotes/internal/domain/sync"
)

var ResolveCmd = &cobra.Command{
	Use:   "resolve <conflict-id> <client|server>",
	Short: "Разрешить конфликт синхронизации",
	Long: `client оставляет локальную версию и отправляет ее на сервер,
server заменяет локальную запись серверной.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(domainsync.ResolveClient), string(domainsync.ResolveServer)},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("неверный ID конфликта: %w", err)
		}

		if err := app.ResolveConflict(cmd.Context(), id, domainsync.Resolution(args[1])); err != nil {
			return fmt.Errorf("ошибка разрешения конфликта: %w", err)
		}
		fmt.Println(types.Success("✓"), "Конфликт разрешен")
		return nil
	},
}
