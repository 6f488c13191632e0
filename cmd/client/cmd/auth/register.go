package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	Long: `Регистрация нового пользователя на сервере StudyNotes.

Пароль должен содержать минимум 8 символов, хотя бы одну букву и цифру.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Регистрация нового пользователя ===")
		fmt.Println()

		email, err := types.ReadLine("Email: ")
		if err != nil {
			return err
		}
		password, err := types.ReadPassword("Пароль: ")
		if err != nil {
			return err
		}
		confirm, err := types.ReadPassword("Повторите пароль: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("пароли не совпадают")
		}

		fmt.Println("Регистрация...")
		if _, err := app.Register(cmd.Context(), email, password); err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		fmt.Println()
		fmt.Println(types.Success("✓"), "Регистрация успешно завершена!")
		fmt.Println("Теперь вы можете войти в систему: studynotes auth login")
		return nil
	},
}
