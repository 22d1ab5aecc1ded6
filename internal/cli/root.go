package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
)

type options struct {
	dbDriver   string
	dbURL      string
	sqlitePath string
}

// NewRootCmd builds the shopctl command tree. Database flags default to
// the same environment the server reads.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Administrative tasks for the storefront database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dbDriver, "db-driver", cfg.DBDriver, "Database driver (sqlite|postgres)")
	root.PersistentFlags().StringVar(&opts.dbURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection URL")
	root.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")

	root.AddCommand(
		newMigrateCmd(opts),
		newUserCmd(opts),
		newSessionsCmd(opts),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) open(ctx context.Context) (*gorm.DB, error) {
	dsn := o.sqlitePath
	if o.dbDriver == db.DriverPostgres {
		dsn = o.dbURL
	}
	return db.Open(ctx, o.dbDriver, dsn)
}

// withDB opens the database, runs fn and always closes the handle.
func (o *options) withDB(ctx context.Context, fn func(*gorm.DB) error) error {
	gdb, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	return fn(gdb)
}
