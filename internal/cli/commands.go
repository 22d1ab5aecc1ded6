package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(gdb *gorm.DB) error {
				if err := db.Migrate(gdb); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}

func newUserCmd(opts *options) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var username, password string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user that can log in",
		Long: `Create a user account. There is no registration endpoint, so this is
the only way to add users.

Example:
  shopctl user create --username alice --password s3cret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(gdb *gorm.DB) error {
				if err := db.Migrate(gdb); err != nil {
					return err
				}
				svc := &service.AuthService{Repo: repo.New(gdb), Events: events.Nop{}}
				u, err := svc.CreateUser(cmd.Context(), username, password)
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %q with id %d\n", u.Username, u.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&username, "username", "", "Login name")
	createCmd.Flags().StringVar(&password, "password", "", "Plain password, stored as a bcrypt hash")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func newSessionsCmd(opts *options) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired and revoked sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(gdb *gorm.DB) error {
				svc := &service.AuthService{Repo: repo.New(gdb)}
				n, err := svc.PurgeSessions(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions\n", n)
				return nil
			})
		},
	})
	return sessionsCmd
}
