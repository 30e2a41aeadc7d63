package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run: func(cmd *cobra.Command, _ []string) {
		// initApp ya migra al arrancar; este comando sirve para despliegues
		// donde la migración corre como paso separado
		if err := migrateAll(context.Background()); err != nil {
			logrus.Fatalf("[MIGRATION] failed: %v", err)
		}
		logrus.Info("[MIGRATION] Schema is up to date")
		StopApp()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
