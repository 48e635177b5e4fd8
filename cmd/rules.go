package main

import (
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active inference rule catalog in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		return printJSON(env.Engine.Catalog().Rules())
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
