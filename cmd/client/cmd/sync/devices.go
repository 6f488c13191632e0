package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
)

var removeDevice string

var DevicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Устройства, участвующие в синхронизации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if removeDevice != "" {
			if err := app.RemoveDevice(cmd.Context(), removeDevice); err != nil {
				return fmt.Errorf("ошибка удаления устройства: %w", err)
			}
			fmt.Println(types.Success("✓"), "Устройство удалено")
			return nil
		}

		devices, err := app.Devices(cmd.Context())
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("Устройств нет")
			return nil
		}

		rows := make([][]string, 0, len(devices))
		for _, d := range devices {
			rows = append(rows, []string{
				d.ID,
				d.Name,
				types.Truncate(d.UserAgent, 30),
				d.LastSeen.Local().Format("2006-01-02 15:04"),
			})
		}
		fmt.Println(types.RenderTable([]string{"ID", "Имя", "Клиент", "Активность"}, rows, nil))
		return nil
	},
}

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Статистика синхронизации на сервере",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		stats, err := app.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("=== Статистика синхронизации ===")
		fmt.Printf("  Всего синхронизаций: %d\n", stats.TotalSyncs)
		fmt.Printf("  Отправлено на сервер: %d записей\n", stats.TotalUploads)
		fmt.Printf("  Загружено с сервера: %d записей\n", stats.TotalDownloads)
		fmt.Printf("  Обнаружено конфликтов: %d\n", stats.TotalConflicts)
		fmt.Printf("  Разрешено конфликтов: %d\n", stats.TotalResolved)
		fmt.Printf("  Среднее время: %.0f мс\n", stats.AvgSyncDuration)
		if !stats.LastSync.IsZero() {
			fmt.Printf("  Последняя: %s\n", stats.LastSync.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	DevicesCmd.Flags().StringVar(&removeDevice, "remove", "", "удалить устройство по ID")
}
