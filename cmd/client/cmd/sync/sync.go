package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/app/client"
	domainsync "studynotes/internal/domain/sync"
)

var (
	direction     string
	syncStatus    bool
	showConflicts bool
	watch         bool
	quiet         bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Управление синхронизацией",
	Long: `Синхронизация заметок и папок между клиентом и сервером.

Сначала отправляются локальные изменения, затем загружаются изменения с сервера.
Стратегия разрешения конфликтов задается параметром conflict_strategy
(client, server, newer, manual).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if syncStatus {
			return showSyncStatus(cmd.Context(), app)
		}
		if showConflicts {
			return showSyncConflicts(cmd.Context(), app)
		}

		dir, err := domainsync.ParseDirection(direction)
		if err != nil {
			return err
		}
		if watch {
			return watchSync(cmd.Context(), app, dir)
		}
		return runSync(cmd.Context(), app, dir)
	},
}

func runSync(ctx context.Context, app *client.App, dir domainsync.Direction) error {
	fmt.Println("=== Синхронизация данных ===")

	var onProgress domainsync.ProgressFunc
	if !quiet {
		onProgress = func(p domainsync.Progress) {
			fmt.Println("  " + types.Faint(p.String()))
		}
	}

	result, err := app.Sync(ctx, dir, onProgress)
	if err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	fmt.Println()
	printResult(result)
	return nil
}

func printResult(result *client.SyncResult) {
	if result.Success() {
		fmt.Println(types.Success("✓"), "Синхронизация завершена!")
	} else {
		fmt.Println(types.Warning("!"), "Синхронизация завершена с ошибками")
	}
	fmt.Printf("Время выполнения: %v\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Отправлено на сервер: %d записей\n", result.Uploaded)
	fmt.Printf("Загружено с сервера: %d записей\n", result.Downloaded)

	if result.Conflicts > 0 {
		fmt.Printf("Обнаружено конфликтов: %d\n", result.Conflicts)
		fmt.Printf("Разрешено конфликтов: %d\n", result.Resolved)
		if result.Resolved < result.Conflicts {
			fmt.Println(types.Warning("!"), "Некоторые конфликты не были разрешены автоматически")
			fmt.Println("  Используйте 'studynotes sync --conflicts' для просмотра")
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("Ошибок при синхронизации: %d\n", len(result.Errors))
		for i, e := range result.Errors {
			if i == 3 {
				fmt.Printf("  ... и еще %d ошибок\n", len(result.Errors)-3)
				break
			}
			fmt.Printf("  • %s %s: %s\n", e.Operation, types.ShortID(e.RecordID), e.Message)
		}
	}
}

func watchSync(ctx context.Context, app *client.App, dir domainsync.Direction) error {
	fmt.Println("Фоновая синхронизация, Ctrl+C для остановки")
	return app.Watch(ctx, dir, func(result *client.SyncResult, err error) {
		stamp := time.Now().Format("15:04:05")
		switch {
		case errors.Is(err, client.ErrSyncInProgress):
			fmt.Printf("[%s] %s синхронизация уже выполняется\n", stamp, types.Warning("!"))
		case errors.Is(err, context.Canceled):
		case err != nil:
			fmt.Printf("[%s] %s %v\n", stamp, types.Warning("!"), err)
		default:
			fmt.Printf("[%s] ↑%d ↓%d конфликтов: %d ошибок: %d\n",
				stamp, result.Uploaded, result.Downloaded, result.Conflicts, len(result.Errors))
		}
	})
}

func showSyncStatus(ctx context.Context, app *client.App) error {
	fmt.Println("=== Статус синхронизации ===")

	counts, err := app.LocalStatus(ctx)
	if err != nil {
		return err
	}
	lastSync := "никогда"
	if !counts.LastSync.IsZero() {
		lastSync = counts.LastSync.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Println(types.RenderTable(
		[]string{"Локальный кэш", "Значение"},
		[][]string{
			{"Заметок", strconv.Itoa(counts.Notes)},
			{"Папок", strconv.Itoa(counts.Folders)},
			{"Ожидают отправки (заметки)", strconv.Itoa(counts.PendingNotes)},
			{"Ожидают отправки (папки)", strconv.Itoa(counts.PendingFolders)},
			{"Конфликтов", strconv.Itoa(counts.Conflicts)},
			{"Последняя синхронизация", lastSync},
		},
		[]types.Align{types.AlignLeft, types.AlignRight},
	))

	status, err := app.ServerStatus(ctx)
	if err != nil {
		fmt.Printf("%s сервер: %v\n", types.Warning("!"), err)
		return nil
	}
	fmt.Println(types.RenderTable(
		[]string{"Сервер", "Значение"},
		[][]string{
			{"Заметок", strconv.Itoa(status.TotalNotes)},
			{"Папок", strconv.Itoa(status.TotalFolders)},
			{"Устройств", strconv.Itoa(status.DeviceCount)},
			{"Неразрешенных конфликтов", strconv.Itoa(status.PendingConflicts)},
			{"Хранилище", fmt.Sprintf("%s / %s", formatBytes(status.StorageUsed), formatBytes(status.StorageLimit))},
		},
		[]types.Align{types.AlignLeft, types.AlignRight},
	))
	return nil
}

func showSyncConflicts(ctx context.Context, app *client.App) error {
	conflicts, err := app.Conflicts(ctx)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		fmt.Println("Неразрешенных конфликтов нет")
		return nil
	}

	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			string(c.Kind),
			types.ShortID(c.RecordID),
			string(c.Type),
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Println(types.RenderTable(
		[]string{"ID", "Тип", "Запись", "Конфликт", "Создан"},
		rows,
		[]types.Align{types.AlignRight},
	))
	fmt.Println("Разрешить: studynotes sync resolve <id> <client|server>")
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	SyncCmd.Flags().StringVarP(&direction, "direction", "d", string(domainsync.DirectionBoth), "направление (both, upload, download)")
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
	SyncCmd.Flags().BoolVar(&showConflicts, "conflicts", false, "показать неразрешенные конфликты")
	SyncCmd.Flags().BoolVarP(&watch, "watch", "w", false, "синхронизировать периодически")
	SyncCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "не выводить прогресс")
	SyncCmd.MarkFlagsMutuallyExclusive("status", "conflicts", "watch")
}
