package main

import (
	"github.com/spf13/cobra"
)

var (
	inferContextPath string
	inferRequired    []string
	inferSuggest     bool
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Infer missing fields from a context JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, err := loadContext(inferContextPath)
		if err != nil {
			return err
		}

		if inferSuggest {
			missing := inferRequired
			if len(missing) == 0 {
				missing = env.Engine.MissingFields(ctx, []string{
					"reports_to", "company_size", "experience_level", "salary_range",
				})
			}
			return printJSON(env.Engine.Suggest(ctx, missing))
		}

		if len(inferRequired) > 0 {
			return printJSON(map[string]any{
				"missing_fields": env.Engine.MissingFields(ctx, inferRequired),
				"inferences":     env.Engine.Infer(ctx),
			})
		}

		return printJSON(env.Engine.Infer(ctx))
	},
}

func init() {
	inferCmd.Flags().StringVar(&inferContextPath, "context", "-", "path to context JSON (default stdin)")
	inferCmd.Flags().StringSliceVar(&inferRequired, "required", nil, "required fields to check for gaps")
	inferCmd.Flags().BoolVar(&inferSuggest, "suggest", false, "group validated inferences by missing field")
	rootCmd.AddCommand(inferCmd)
}
