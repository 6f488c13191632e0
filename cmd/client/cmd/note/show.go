package note

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/app/client"
)

var (
	showFormat  string
	showContent bool
)

var ShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Просмотреть заметку",
	Long: `Просмотр заметки по ID или его префиксу.

По умолчанию выводится только начало исходного текста, --content печатает его целиком.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		n, err := app.GetNote(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ошибка получения заметки: %w", err)
		}

		switch showFormat {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(n)
		case "markdown", "md":
			data, err := client.RenderMarkdown(n, "")
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}
		printNote(n)
		return nil
	},
}

func printNote(n *client.LocalNote) {
	fmt.Printf("=== %s ===\n", n.Title)
	fmt.Printf("ID:        %s\n", n.ID)
	fmt.Printf("Источник:  %s\n", n.SourceType.DisplayName())
	if n.SourceURL != "" {
		fmt.Printf("Ссылка:    %s\n", n.SourceURL)
	}
	fmt.Printf("Статус:    %s\n", n.Status)
	if n.FolderID != nil {
		fmt.Printf("Папка:     %s\n", *n.FolderID)
	}
	if len(n.Tags) > 0 {
		fmt.Printf("Теги:      %s\n", strings.Join(n.Tags, ", "))
	}
	if n.Favorite {
		fmt.Println("Избранное: да")
	}
	fmt.Printf("Версия:    %d (%s)\n", n.Version, stateLabel(n.State))
	fmt.Printf("Создана:   %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Изменена:  %s\n", n.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	if n.AIContent != "" {
		fmt.Println()
		fmt.Println("--- Конспект ---")
		fmt.Println(n.AIContent)
	}
	if n.Content != "" {
		fmt.Println()
		fmt.Println("--- Исходный текст ---")
		if showContent {
			fmt.Println(n.Content)
		} else {
			fmt.Println(types.Truncate(n.Content, 500))
		}
	}
}

func init() {
	ShowCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "формат вывода (text, json, markdown)")
	ShowCmd.Flags().BoolVar(&showContent, "content", false, "выводить исходный текст полностью")
}
