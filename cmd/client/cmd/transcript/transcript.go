package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
)

var (
	lang     string
	asJSON   bool
	segments bool
)

var TranscriptCmd = &cobra.Command{
	Use:   "transcript <url>",
	Short: "Получить расшифровку видео YouTube",
	Long: `Сервер скачивает субтитры видео и возвращает текст.

Заметка при этом не создается, для этого есть studynotes note youtube.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		t, err := app.Transcript(cmd.Context(), args[0], lang)
		if err != nil {
			return fmt.Errorf("ошибка получения субтитров: %w", err)
		}

		if asJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(t)
		}

		fmt.Println(types.Faint(fmt.Sprintf("%s · %s · %s · %s", t.Title, t.Author, t.Duration.Round(time.Second), t.Language)))
		fmt.Println()
		if !segments {
			fmt.Println(t.Text)
			return nil
		}
		for _, s := range t.Segments {
			fmt.Printf("[%s] %s\n", formatOffset(time.Duration(s.Start * float64(time.Second))), s.Text)
		}
		return nil
	},
}

func formatOffset(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func init() {
	TranscriptCmd.Flags().StringVar(&lang, "lang", "", "предпочтительный язык субтитров")
	TranscriptCmd.Flags().BoolVar(&asJSON, "json", false, "вывести результат в JSON")
	TranscriptCmd.Flags().BoolVar(&segments, "segments", false, "выводить сегменты с таймкодами")
}
