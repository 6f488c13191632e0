package note

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/domain/generate"
)

var generateJSON bool

var GenerateCmd = &cobra.Command{
	Use:   "generate <id> <summary|quiz|flashcards|mindmap>",
	Short: "Сгенерировать материалы по заметке",
	Long: `Генерация конспекта, теста, карточек или интеллект-карты на сервере.

Заметка должна быть синхронизирована. Результат сохраняется в заметке и в локальном кэше.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"summary", "quiz", "flashcards", "mindmap"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		kind := generate.Kind(args[1])
		if err := kind.Validate(); err != nil || kind == generate.KindChat {
			return fmt.Errorf("неизвестный вид материалов %q", args[1])
		}

		fmt.Println("Генерация...")
		res, err := app.Generate(cmd.Context(), args[0], kind)
		if err != nil {
			return fmt.Errorf("ошибка генерации: %w", err)
		}

		if generateJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(res)
		}
		printResult(res)
		return nil
	},
}

func printResult(res *generate.Result) {
	switch {
	case len(res.Quiz) > 0:
		for i, q := range res.Quiz {
			fmt.Printf("%d. %s\n", i+1, q.Question)
			for j, opt := range q.Options {
				mark := " "
				if j == q.Answer {
					mark = types.Success("✓")
				}
				fmt.Printf("   %s %c) %s\n", mark, 'a'+j, opt)
			}
			if q.Explanation != "" {
				fmt.Println("  ", types.Faint(q.Explanation))
			}
			fmt.Println()
		}
	case len(res.Flashcards) > 0:
		rows := make([][]string, 0, len(res.Flashcards))
		for _, c := range res.Flashcards {
			rows = append(rows, []string{c.Front, c.Back})
		}
		fmt.Println(types.RenderTable([]string{"Вопрос", "Ответ"}, rows, nil))
	case res.MindMap != nil:
		printMindMap(*res.MindMap, 0)
	default:
		fmt.Println(res.Output)
	}
}

func printMindMap(node generate.MindMapNode, depth int) {
	fmt.Printf("%s- %s\n", strings.Repeat("  ", depth), node.Title)
	for _, child := range node.Children {
		printMindMap(child, depth+1)
	}
}

var chatMessage string

var ChatCmd = &cobra.Command{
	Use:   "chat <id>",
	Short: "Задать вопросы по заметке",
	Long: `Диалог с моделью по содержимому заметки.

С --message отправляется один вопрос. Без него запускается интерактивный
режим, пустая строка или EOF завершают диалог.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if chatMessage != "" {
			reply, err := app.Chat(cmd.Context(), args[0], nil, chatMessage)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		}

		var history []generate.Message
		for {
			question, err := types.ReadLine("> ")
			if errors.Is(err, io.EOF) || question == "" {
				return nil
			}
			if err != nil {
				return err
			}

			reply, err := app.Chat(cmd.Context(), args[0], history, question)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			fmt.Println()

			history = append(history,
				generate.Message{Role: "user", Content: question},
				generate.Message{Role: "assistant", Content: reply},
			)
		}
	},
}

func init() {
	GenerateCmd.Flags().BoolVar(&generateJSON, "json", false, "вывести результат в JSON")
	ChatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "один вопрос без интерактивного режима")
}
