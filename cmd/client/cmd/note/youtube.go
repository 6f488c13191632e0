package note

import (
	"fmt"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/domain/note"
)

var (
	youtubeFolder string
	youtubeLang   string
)

var YouTubeCmd = &cobra.Command{
	Use:   "youtube <url>",
	Short: "Создать заметку из субтитров YouTube",
	Long: `Сервер скачивает субтитры видео и создает заметку с расшифровкой.

Требуется вход в систему и соединение с сервером.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		req := note.YouTubeRequest{URL: args[0], Language: youtubeLang}
		if youtubeFolder != "" {
			folderID, err := resolveFolder(cmd, youtubeFolder)
			if err != nil {
				return err
			}
			req.FolderID = &folderID
		}

		fmt.Println("Загрузка субтитров...")
		n, err := app.CreateFromYouTube(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("ошибка создания заметки: %w", err)
		}

		fmt.Println(types.Success("✓"), "Заметка создана:", n.ID)
		fmt.Printf("%s (%d символов)\n", n.Title, len([]rune(n.Content)))
		return nil
	},
}

func init() {
	YouTubeCmd.Flags().StringVar(&youtubeFolder, "folder", "", "папка (ID, префикс или имя)")
	YouTubeCmd.Flags().StringVar(&youtubeLang, "lang", "", "предпочтительный язык субтитров")
}
