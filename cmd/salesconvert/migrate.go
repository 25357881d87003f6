package main

import (
	"github.com/spf13/cobra"

	"salesconvert.example/sales-convert/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the users and sales_data tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()
		db, err := openDatabase(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		log.Info(ctx, "migration completed")
		return nil
	},
}
