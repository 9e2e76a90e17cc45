package main

import (
	"fmt"

	"github.com/fadilmartias/talent-match/internal/matching"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Refresh stale or missing embeddings of profiles and jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var kinds []matching.EntityKind
		switch kind := viper.GetString("kind"); kind {
		case "all":
			kinds = []matching.EntityKind{matching.KindProfile, matching.KindJob}
		case string(matching.KindProfile), string(matching.KindJob):
			kinds = []matching.EntityKind{matching.EntityKind(kind)}
		default:
			return fmt.Errorf("unknown kind %q (want profile, job or all)", kind)
		}

		logger, deps, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()
		defer logger.Sync()

		for _, kind := range kinds {
			report, err := deps.Recommendations.Reembed(cmd.Context(), kind, viper.GetInt("batch"))
			if err != nil {
				return fmt.Errorf("reembed %s: %w", kind, err)
			}
			logger.Info("reembed finished",
				zap.String("kind", string(kind)),
				zap.Int("refreshed", report.Refreshed),
				zap.Int("failed", report.Failed))
		}

		stats := deps.Store.Stats()
		logger.Info("embedding store",
			zap.Int64("hits", stats.Hits),
			zap.Int64("provider_calls", stats.ProviderCalls),
			zap.Int64("failures", stats.Failures))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reembedCmd)

	reembedCmd.Flags().StringP("kind", "k", "all", "entities to refresh: profile, job or all")
	reembedCmd.Flags().Int("batch", 100, "rows loaded per batch")

	viper.BindPFlag("kind", reembedCmd.Flags().Lookup("kind"))
	viper.BindPFlag("batch", reembedCmd.Flags().Lookup("batch"))
}
