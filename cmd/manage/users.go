package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"kvartal/internal/models"
	"kvartal/internal/services"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Inspect accounts",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := services.ListUsers()
		if err != nil {
			return err
		}
		return printUsers(cmd.OutOrStdout(), users)
	},
}

func init() {
	userCmd.AddCommand(userListCmd)
}

func printUsers(out io.Writer, users []models.User) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tJOINED\tUNREAD")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", u.ID, u.Username, u.CreatedAt.Format("2006-01-02"), services.UnreadCount(u.ID))
	}
	return w.Flush()
}
