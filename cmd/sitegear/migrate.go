package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitegear/sitegear/migrations"
	"github.com/sitegear/sitegear/pkg/db"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations of the shipped modules",
		Long: `Apply the goose migrations of the shipped modules and, unless --jobs=false,
the River job queue schema. Requires database.url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			s, err := openSite(v)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.close(ctx); err == nil {
					err = cerr
				}
			}()

			pool, err := s.database(ctx)
			if err != nil {
				return err
			}
			table := s.config.String("database.migrations-table", db.DefaultMigrationsTable)
			if err := db.Migrate(ctx, pool, migrations.FS, table, s.logger); err != nil {
				return err
			}
			if v.GetBool("jobs") {
				if err := db.MigrateJobs(ctx, pool, s.logger); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().Bool("jobs", true, "also migrate the job queue tables")
	return cmd
}
