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
	listFormat   string
	listFolder   string
	listTag      string
	listQuery    string
	listFavorite bool
	listDeleted  bool
	listPending  bool
	listLimit    int
	listOffset   int
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список заметок",
	Long: `Просмотр заметок из локального кэша с фильтрами.

Папку можно задать ID или префиксом, "none" выбирает заметки без папки.
Поддерживается пагинация через флаги --limit и --offset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		filter := client.NoteFilter{
			Favorite:    listFavorite,
			Tag:         strings.ToLower(strings.TrimSpace(listTag)),
			Query:       listQuery,
			ShowDeleted: listDeleted,
			Limit:       listLimit,
			Offset:      listOffset,
		}
		if listPending {
			filter.State = client.StatePending
		}
		if cmd.Flags().Changed("folder") {
			folderID, err := resolveFolder(cmd, listFolder)
			if err != nil {
				return err
			}
			filter.FolderID = &folderID
		}

		notes, err := app.ListNotes(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("ошибка получения списка заметок: %w", err)
		}

		if listFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(notes)
		}
		printNotesTable(notes)
		return nil
	},
}

// resolveFolder превращает аргумент --folder в ID; пустая строка означает корень
func resolveFolder(cmd *cobra.Command, value string) (string, error) {
	if value == "" || value == "none" {
		return "", nil
	}
	app, err := types.App(cmd)
	if err != nil {
		return "", err
	}
	folders, err := app.ListFolders(cmd.Context())
	if err != nil {
		return "", err
	}
	var found []string
	for _, f := range folders {
		if strings.HasPrefix(f.ID, strings.ToLower(value)) || strings.EqualFold(f.Name, value) {
			found = append(found, f.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("папка %q не найдена", value)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("папка %q неоднозначна, уточните ID", value)
}

func printNotesTable(notes []*client.LocalNote) {
	if len(notes) == 0 {
		fmt.Println("Заметки не найдены")
		return
	}

	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		title := types.Truncate(n.Title, 40)
		if n.Favorite {
			title = "★ " + title
		}
		if n.IsDeleted() {
			title = types.Faint(title + " (удалена)")
		}
		rows = append(rows, []string{
			types.ShortID(n.ID),
			title,
			n.SourceType.DisplayName(),
			string(n.Status),
			strings.Join(n.Tags, ", "),
			stateLabel(n.State),
			n.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	fmt.Println(types.RenderTable(
		[]string{"ID", "Название", "Источник", "Статус", "Теги", "Синхр.", "Обновлено"},
		rows,
		nil,
	))
	fmt.Printf("Всего заметок: %d\n", len(notes))
}

func stateLabel(s client.SyncState) string {
	switch s {
	case client.StateSynced:
		return types.Success("✓")
	case client.StateConflict:
		return types.Warning("конфликт")
	default:
		return types.Warning("ожидает")
	}
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "формат вывода (table, json)")
	ListCmd.Flags().StringVar(&listFolder, "folder", "", "фильтр по папке (ID, префикс, имя или none)")
	ListCmd.Flags().StringVarP(&listTag, "tag", "t", "", "фильтр по тегу")
	ListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "поиск по названию")
	ListCmd.Flags().BoolVar(&listFavorite, "favorite", false, "только избранные")
	ListCmd.Flags().BoolVar(&listDeleted, "deleted", false, "показывать удаленные заметки")
	ListCmd.Flags().BoolVar(&listPending, "pending", false, "только неотправленные")
	ListCmd.Flags().IntVar(&listLimit, "limit", 50, "ограничение количества заметок")
	ListCmd.Flags().IntVar(&listOffset, "offset", 0, "смещение для пагинации")
}
