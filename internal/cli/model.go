package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/internal/infrastructure/policy"
)

// ModelInfo is the output of "model inspect".
type ModelInfo struct {
	TrainedAt    time.Time               `json:"trained_at"`
	Metrics      map[string]float64      `json:"metrics,omitempty"`
	Source       string                  `json:"source"`
	Version      string                  `json:"version"`
	TopFeatures  []service.FeatureWeight `json:"top_features"`
	Intercept    float64                 `json:"intercept"`
	FeatureCount int                     `json:"feature_count"`
}

func (a *app) newModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect risk model artifacts",
	}

	var top int
	inspect := &cobra.Command{
		Use:   "inspect",
		Short: "Validate a model artifact and show its version and strongest features",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, loaded, err := a.loadEngine()
			if err != nil {
				return err
			}
			m := loaded.Predictor.Model()
			return a.render(ModelInfo{
				TrainedAt:    m.TrainedAt,
				Metrics:      m.Metrics,
				Source:       loaded.Source,
				Version:      m.Version,
				TopFeatures:  loaded.Predictor.TopFeatures(top),
				Intercept:    m.Intercept,
				FeatureCount: len(m.FeatureNames),
			})
		},
	}
	inspect.Flags().IntVar(&top, "top", 5, "number of features to list")

	cmd.AddCommand(inspect)
	return cmd
}

func (a *app) newPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Work with clinical policy files",
	}

	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective clinical policy as YAML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := policy.Load(a.v.GetString(keyPolicy))
			if err != nil {
				return err
			}
			return policy.Encode(a.out, p)
		},
	}

	validate := &cobra.Command{
		Use:   "validate POLICY_FILE",
		Short: "Check a clinical policy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := policy.Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: ok\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(dump, validate)
	return cmd
}
