package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	renderContextPath  string
	renderTemplatePath string
	renderValidate     bool
	renderVariables    bool
	renderPipeline     bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an outreach template against a context",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, err := loadContext(renderContextPath)
		if err != nil {
			return err
		}

		if renderVariables {
			return printJSON(env.Templates.AvailableVariables(ctx))
		}

		if renderTemplatePath == "" {
			return eris.New("--template is required")
		}
		tmplBytes, err := os.ReadFile(renderTemplatePath)
		if err != nil {
			return eris.Wrapf(err, "read template %s", renderTemplatePath)
		}
		tmpl := string(tmplBytes)

		switch {
		case renderValidate:
			return printJSON(env.Templates.Validate(tmpl, ctx))
		case renderPipeline:
			result, err := env.Pipeline.Run(cmd.Context(), ctx, tmpl)
			if err != nil {
				return err
			}
			return printJSON(result)
		default:
			fmt.Println(env.Templates.Substitute(tmpl, ctx))
			return nil
		}
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderContextPath, "context", "-", "path to context JSON (default stdin)")
	renderCmd.Flags().StringVar(&renderTemplatePath, "template", "", "path to template file")
	renderCmd.Flags().BoolVar(&renderValidate, "validate", false, "validate instead of rendering")
	renderCmd.Flags().BoolVar(&renderVariables, "variables", false, "list variables resolvable from the context")
	renderCmd.Flags().BoolVar(&renderPipeline, "pipeline", false, "run the full infer-score-render pipeline")
	rootCmd.AddCommand(renderCmd)
}
