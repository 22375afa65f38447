/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/messagely/apiserver/internal/db"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/internal/storage"
	"github.com/messagely/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// archiveCmd exports one user's inbox and outbox to object storage.
var archiveCmd = &cobra.Command{
	Use:   "archive <username>",
	Short: "Export a user's messages to object storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		objects, err := storage.Open(ctx, cfg.Storage)
		if errors.Is(err, storage.ErrDisabled) {
			return errors.New("STORAGE_BACKEND is not set")
		}
		if err != nil {
			return err
		}

		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		users := services.NewUserService(store.NewUserRepository(dbConn), cfg.Auth.BcryptWorkFactor)
		key, err := services.NewArchiveService(users, objects).Export(ctx, args[0])
		if err != nil {
			return err
		}
		log.Info().Str("bucket", objects.Bucket()).Str("key", key).Msg("archive written")
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}
