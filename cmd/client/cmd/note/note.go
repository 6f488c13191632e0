package note

import (
	"github.com/spf13/cobra"
)

// NoteCmd - родительская команда для работы с заметками
var NoteCmd = &cobra.Command{
	Use:     "note",
	Aliases: []string{"notes", "n"},
	Short:   "Управление заметками",
	Long: `Создание, просмотр и удаление заметок, генерация материалов.

Заметки хранятся в локальном кэше и отправляются на сервер при синхронизации.
Вместо полного ID можно указывать его уникальный префикс.`,
}
