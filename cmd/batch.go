package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/pipeline"
)

var (
	batchInputPath    string
	batchTemplatePath string
	batchConcurrency  int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the pipeline over many contexts with bounded concurrency",
	Long: `Reads batch items from a JSON array or a CSV file (detected by
extension) and runs each through the infer-score-render pipeline. CSV
columns become context fields; an "id" column labels the item.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := loadBatchItems(batchInputPath)
		if err != nil {
			return err
		}

		var tmpl string
		if batchTemplatePath != "" {
			b, err := os.ReadFile(batchTemplatePath)
			if err != nil {
				return eris.Wrapf(err, "read template %s", batchTemplatePath)
			}
			tmpl = string(b)
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}
		results := env.Pipeline.RunBatch(cmd.Context(), items, tmpl, concurrency)
		return printJSON(results)
	},
}

func loadBatchItems(path string) ([]pipeline.BatchItem, error) {
	if strings.HasSuffix(path, ".csv") {
		return loadBatchCSV(path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read batch input %s", path)
	}
	var items []pipeline.BatchItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, eris.Wrapf(err, "parse batch input %s", path)
	}
	return items, nil
}

func loadBatchCSV(path string) ([]pipeline.BatchItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch input %s", path)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "parse csv %s", path)
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("csv %s has no data rows", path)
	}

	header := rows[0]
	items := make([]pipeline.BatchItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		item := pipeline.BatchItem{Context: make(map[string]any, len(header))}
		for i, col := range header {
			if i >= len(row) || row[i] == "" {
				continue
			}
			if col == "id" {
				item.ID = row[i]
				continue
			}
			item.Context[col] = row[i]
		}
		items = append(items, item)
	}
	return items, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchInputPath, "input", "", "path to batch items (.json or .csv)")
	batchCmd.Flags().StringVar(&batchTemplatePath, "template", "", "path to the template applied to every item")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent items (0 = config default)")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
