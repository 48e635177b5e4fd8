package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	scoreContextPath string
	scoreField       string
	scoreValue       string
	scoreRecommend   bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the confidence of a field value against a context",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreField == "" {
			return eris.New("--field is required")
		}

		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, err := loadContext(scoreContextPath)
		if err != nil {
			return err
		}

		value := scoreValue
		if value == "" {
			value = ctx.String(scoreField)
		}

		result := env.Scorer.Score(scoreField, value, ctx)
		if scoreRecommend {
			return printJSON(map[string]any{
				"score":           result,
				"recommendations": env.Scorer.Recommendations(scoreField, value, ctx),
			})
		}
		return printJSON(result)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreContextPath, "context", "-", "path to context JSON (default stdin)")
	scoreCmd.Flags().StringVar(&scoreField, "field", "", "field name to score")
	scoreCmd.Flags().StringVar(&scoreValue, "value", "", "value to score (default: value from context)")
	scoreCmd.Flags().BoolVar(&scoreRecommend, "recommend", false, "include improvement recommendations")
	rootCmd.AddCommand(scoreCmd)
}
