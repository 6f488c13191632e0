package note

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
)

var deleteYes bool

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить заметку",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		n, err := app.GetNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !deleteYes {
			answer, err := types.ReadLine(fmt.Sprintf("Удалить заметку %q? [y/N]: ", n.Title))
			if err != nil {
				return err
			}
			if a := strings.ToLower(answer); a != "y" && a != "yes" && a != "д" && a != "да" {
				fmt.Println("Отменено")
				return nil
			}
		}

		if err := app.DeleteNote(cmd.Context(), n.ID); err != nil {
			return fmt.Errorf("ошибка удаления заметки: %w", err)
		}
		fmt.Println(types.Success("✓"), "Заметка удалена")
		return nil
	},
}

var FavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Добавить в избранное или убрать из него",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		n, err := app.ToggleFavorite(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if n.Favorite {
			fmt.Println("★ Заметка добавлена в избранное")
		} else {
			fmt.Println("Заметка убрана из избранного")
		}
		return nil
	},
}

func init() {
	DeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "не спрашивать подтверждение")
}
