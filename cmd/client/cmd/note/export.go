package note

import (
	"fmt"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
)

var (
	exportAll bool
	exportDir string
)

var ExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Экспортировать заметки в Markdown",
	Long: `Сохраняет заметку или все заметки в Markdown-файлы с YAML-заголовком.

Без --dir файлы пишутся в каталог export внутри каталога настроек.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		switch {
		case exportAll:
			paths, err := app.ExportAll(cmd.Context(), exportDir)
			if err != nil {
				return fmt.Errorf("ошибка экспорта: %w", err)
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			fmt.Println(types.Success("✓"), "Экспортировано заметок:", len(paths))
		case len(args) == 1:
			path, err := app.ExportNote(cmd.Context(), args[0], exportDir)
			if err != nil {
				return fmt.Errorf("ошибка экспорта: %w", err)
			}
			fmt.Println(types.Success("✓"), "Заметка сохранена:", path)
		default:
			return fmt.Errorf("укажите ID заметки или --all")
		}
		return nil
	},
}

func init() {
	ExportCmd.Flags().BoolVar(&exportAll, "all", false, "экспортировать все заметки")
	ExportCmd.Flags().StringVar(&exportDir, "dir", "", "каталог для файлов")
}
