package note

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/domain/note"
)

var (
	createTitle    string
	createSource   string
	createURL      string
	createContent  string
	createFile     string
	createFolder   string
	createTags     []string
	createFavorite bool
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать заметку",
	Long: `Создание заметки в локальном кэше. Работает без соединения с сервером.

Содержимое берется из --content, из файла --file или из stdin при --file -.`,
	Example: `  studynotes note create --title "Лекция 1" --file lecture.txt --tag math
  studynotes note create --title "Подкаст" --source audio --url uploads/42/rec.m4a`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		content := createContent
		if createFile != "" {
			data, err := readContent(createFile)
			if err != nil {
				return err
			}
			content = string(data)
		}

		req := note.CreateNoteRequest{
			Title:      createTitle,
			SourceType: note.SourceType(createSource),
			SourceURL:  createURL,
			Content:    content,
			Favorite:   createFavorite,
			Tags:       createTags,
		}
		if createFolder != "" {
			folderID, err := resolveFolder(cmd, createFolder)
			if err != nil {
				return err
			}
			req.FolderID = &folderID
		}

		n, err := app.CreateNote(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("ошибка создания заметки: %w", err)
		}

		fmt.Println(types.Success("✓"), "Заметка создана:", n.ID)
		fmt.Println("Она будет отправлена на сервер при следующей синхронизации")
		return nil
	},
}

func readContent(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return data, nil
}

func init() {
	CreateCmd.Flags().StringVar(&createTitle, "title", "", "название заметки")
	CreateCmd.Flags().StringVar(&createSource, "source", string(note.SourceText), "источник (text, audio, video, upload)")
	CreateCmd.Flags().StringVar(&createURL, "url", "", "ссылка или ключ загруженного файла")
	CreateCmd.Flags().StringVar(&createContent, "content", "", "текст заметки")
	CreateCmd.Flags().StringVar(&createFile, "file", "", "файл с текстом заметки (- для stdin)")
	CreateCmd.Flags().StringVar(&createFolder, "folder", "", "папка (ID, префикс или имя)")
	CreateCmd.Flags().StringSliceVarP(&createTags, "tag", "t", nil, "теги")
	CreateCmd.Flags().BoolVar(&createFavorite, "favorite", false, "добавить в избранное")
	_ = CreateCmd.MarkFlagRequired("title")
	CreateCmd.MarkFlagsMutuallyExclusive("content", "file")
}
