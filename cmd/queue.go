package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and resolve the validation queue",
}

var (
	queuePendingLimit int

	queueRespondStatus     string
	queueRespondFeedback   string
	queueRespondBy         string
	queueRespondAdjustment float64

	queueHistoryField  string
	queueHistoryStatus string

	queueThresholdAutoApprove float64
	queueThresholdHumanReview float64
	queueThresholdReject      float64
)

var queuePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List pending validation requests, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		return printJSON(env.Queue.Pending(queuePendingLimit))
	},
}

var queueRespondCmd = &cobra.Command{
	Use:   "respond <request-id>",
	Short: "Resolve a pending validation request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var adjustment *float64
		if cmd.Flags().Changed("adjust") {
			adjustment = &queueRespondAdjustment
		}
		resp, err := env.Queue.SubmitResponse(cmd.Context(), args[0], queueRespondStatus, queueRespondFeedback, queueRespondBy, adjustment)
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var queueStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize queue state",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		return printJSON(env.Queue.Stats())
	},
}

var queueHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List requests filtered by field and status, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		return printJSON(env.Queue.History(queueHistoryField, model.ValidationStatus(queueHistoryStatus)))
	},
}

var queueThresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show or update queue thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initCore(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		updates := map[string]float64{}
		if cmd.Flags().Changed("auto-approve") {
			updates["auto_approve"] = queueThresholdAutoApprove
		}
		if cmd.Flags().Changed("human-review") {
			updates["human_review"] = queueThresholdHumanReview
		}
		if cmd.Flags().Changed("reject") {
			updates["reject"] = queueThresholdReject
		}
		if len(updates) > 0 {
			if err := env.Queue.UpdateThresholds(updates); err != nil {
				return err
			}
		}
		return printJSON(env.Queue.GetThresholds())
	},
}

func init() {
	queuePendingCmd.Flags().IntVar(&queuePendingLimit, "limit", 0, "max requests to return (0 = all)")

	queueRespondCmd.Flags().StringVar(&queueRespondStatus, "status", "", "terminal status: approved, rejected, or needs_review")
	queueRespondCmd.Flags().StringVar(&queueRespondFeedback, "feedback", "", "reviewer feedback")
	queueRespondCmd.Flags().StringVar(&queueRespondBy, "by", "", "reviewer identity")
	queueRespondCmd.Flags().Float64Var(&queueRespondAdjustment, "adjust", 0, "confidence adjustment in [-1,1]")
	_ = queueRespondCmd.MarkFlagRequired("status")

	queueHistoryCmd.Flags().StringVar(&queueHistoryField, "field", "", "filter by field name")
	queueHistoryCmd.Flags().StringVar(&queueHistoryStatus, "status", "", "filter by status")

	queueThresholdsCmd.Flags().Float64Var(&queueThresholdAutoApprove, "auto-approve", 0, "auto-approve threshold")
	queueThresholdsCmd.Flags().Float64Var(&queueThresholdHumanReview, "human-review", 0, "human-review threshold")
	queueThresholdsCmd.Flags().Float64Var(&queueThresholdReject, "reject", 0, "reject threshold")

	queueCmd.AddCommand(queuePendingCmd, queueRespondCmd, queueStatsCmd, queueHistoryCmd, queueThresholdsCmd)
	rootCmd.AddCommand(queueCmd)
}
