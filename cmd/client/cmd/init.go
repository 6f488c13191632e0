package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studynotes/cmd/client/cmd/auth"
	"studynotes/cmd/client/cmd/folder"
	"studynotes/cmd/client/cmd/note"
	"studynotes/cmd/client/cmd/sync"
	"studynotes/cmd/client/cmd/transcript"
	"studynotes/cmd/client/cmd/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние клиента и соединения с сервером",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := app.CheckConnection(ctx); err != nil {
			fmt.Printf("%s сервер недоступен: %v\n", types.Warning("!"), err)
		} else {
			fmt.Printf("%s сервер доступен\n", types.Success("✓"))
		}

		if app.IsAuthenticated() {
			fmt.Printf("%s вход выполнен\n", types.Success("✓"))
		} else {
			fmt.Printf("%s вход не выполнен\n", types.Warning("!"))
		}

		counts, err := app.LocalStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Заметок: %d, папок: %d\n", counts.Notes, counts.Folders)
		fmt.Printf("Ожидают отправки: %d заметок, %d папок\n", counts.PendingNotes, counts.PendingFolders)
		if counts.Conflicts > 0 {
			fmt.Printf("%s конфликтов: %d\n", types.Warning("!"), counts.Conflicts)
		}
		if counts.LastSync.IsZero() {
			fmt.Println("Синхронизации еще не было")
		} else {
			fmt.Printf("Последняя синхронизация: %s\n", counts.LastSync.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(note.NoteCmd)
	note.NoteCmd.AddCommand(note.ListCmd)
	note.NoteCmd.AddCommand(note.ShowCmd)
	note.NoteCmd.AddCommand(note.CreateCmd)
	note.NoteCmd.AddCommand(note.YouTubeCmd)
	note.NoteCmd.AddCommand(note.DeleteCmd)
	note.NoteCmd.AddCommand(note.FavoriteCmd)
	note.NoteCmd.AddCommand(note.GenerateCmd)
	note.NoteCmd.AddCommand(note.ChatCmd)
	note.NoteCmd.AddCommand(note.ExportCmd)

	rootCmd.AddCommand(folder.FolderCmd)
	folder.FolderCmd.AddCommand(folder.ListCmd)
	folder.FolderCmd.AddCommand(folder.CreateCmd)
	folder.FolderCmd.AddCommand(folder.DeleteCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.ResolveCmd)
	sync.SyncCmd.AddCommand(sync.DevicesCmd)
	sync.SyncCmd.AddCommand(sync.StatsCmd)

	rootCmd.AddCommand(transcript.TranscriptCmd)
}
