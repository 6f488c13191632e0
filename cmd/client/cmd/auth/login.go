package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/types"
	"studynotes/internal/domain/sync"
)

var syncAfterLogin bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в StudyNotes",
	Long: `Аутентификация на сервере StudyNotes.

После входа токен сохраняется локально, а устройство регистрируется
для синхронизации.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Вход в систему ===")
		fmt.Println()

		email, err := types.ReadLine("Email: ")
		if err != nil {
			return err
		}
		password, err := types.ReadPassword("Пароль: ")
		if err != nil {
			return err
		}

		fmt.Println("Аутентификация...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Login(ctx, email, password); err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}

		fmt.Println()
		fmt.Println(types.Success("✓"), "Вход выполнен успешно!")

		if !syncAfterLogin {
			return nil
		}

		fmt.Println("Синхронизация данных...")
		result, err := app.Sync(cmd.Context(), sync.DirectionBoth, nil)
		switch {
		case err != nil:
			fmt.Printf("%s ошибка синхронизации: %v\n", types.Warning("!"), err)
			fmt.Println("Вы можете продолжить работу в офлайн-режиме")
		case !result.Success():
			fmt.Printf("%s синхронизация завершена с ошибками (%d)\n", types.Warning("!"), len(result.Errors))
		default:
			fmt.Println(types.Success("✓"), "Данные синхронизированы")
		}
		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVar(&syncAfterLogin, "sync", true, "синхронизировать данные после входа")
}
