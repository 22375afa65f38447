/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/messagely/apiserver/internal/db"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		dbConn, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		users := services.NewUserService(store.NewUserRepository(dbConn), cfg.Auth.BcryptWorkFactor)
		profiles, err := users.All(cmd.Context())
		if err != nil {
			return err
		}
		renderUsers(cmd.OutOrStdout(), profiles)
		return nil
	},
}

func renderUsers(w io.Writer, users []types.UserProfile) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Username", "First name", "Last name", "Phone"})
	for _, u := range users {
		t.AppendRow(table.Row{u.Username, u.FirstName, u.LastName, u.Phone})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(users)})
	t.Render()
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
}
