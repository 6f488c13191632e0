package folder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/domain/note"
)

// FolderCmd - родительская команда для работы с папками
var FolderCmd = &cobra.Command{
	Use:     "folder",
	Aliases: []string{"folders"},
	Short:   "Управление папками",
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список папок",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		folders, err := app.ListFolders(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка папок: %w", err)
		}
		if len(folders) == 0 {
			fmt.Println("Папок нет")
			return nil
		}

		rows := make([][]string, 0, len(folders))
		for _, f := range folders {
			rows = append(rows, []string{
				types.ShortID(f.ID),
				f.Name,
				f.Color,
				strconv.Itoa(f.SortOrder),
				string(f.State),
			})
		}
		fmt.Println(types.RenderTable(
			[]string{"ID", "Название", "Цвет", "Порядок", "Синхр."},
			rows,
			[]types.Align{types.AlignLeft, types.AlignLeft, types.AlignLeft, types.AlignRight},
		))
		return nil
	},
}

var (
	createColor string
	createOrder int
)

var CreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Создать папку",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		f, err := app.CreateFolder(cmd.Context(), note.FolderRequest{
			Name:      args[0],
			Color:     createColor,
			SortOrder: createOrder,
		})
		if err != nil {
			return fmt.Errorf("ошибка создания папки: %w", err)
		}
		fmt.Println(types.Success("✓"), "Папка создана:", f.ID)
		return nil
	},
}

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить папку",
	Long:  `Папка помечается удаленной, ее заметки переносятся в корень.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.DeleteFolder(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления папки: %w", err)
		}
		fmt.Println(types.Success("✓"), "Папка удалена")
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVar(&createColor, "color", "", "цвет в формате #RRGGBB")
	CreateCmd.Flags().IntVar(&createOrder, "order", 0, "порядок сортировки")
}
