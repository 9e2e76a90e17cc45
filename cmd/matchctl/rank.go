package main

import (
	"encoding/json"
	"fmt"

	"github.com/fadilmartias/talent-match/internal/usecase"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank <candidate|job> <id>",
	Short: "Print the ranked recommendations for a candidate or a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := usecase.ParseAnchorKind(args[0])
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}
		limit, _ := cmd.Flags().GetInt("limit")

		logger, deps, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()
		defer logger.Sync()

		page, err := deps.Recommendations.Recommend(cmd.Context(), kind, id, limit)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntP("limit", "l", 10, "number of results (max 100)")
}
