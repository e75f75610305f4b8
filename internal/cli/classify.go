package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/classifier"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Suggest a priority for a ticket title and description",
		Long:  `Runs the same classifier the service uses. The model is used when OPENAI_API_KEY is set, unless --rules-only is given.`,
		Args:  cobra.NoArgs,
		RunE:  runClassify,
	}
	cmd.Flags().String("title", "", "ticket title")
	cmd.Flags().String("description", "", "ticket description")
	cmd.Flags().Bool("rules-only", false, "skip the model and use the keyword rules")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	rulesOnly, _ := cmd.Flags().GetBool("rules-only")

	var cls *classifier.Classifier
	if rulesOnly {
		cls = classifier.New(nil, classifier.Options{}, zap.NewNop())
	} else {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync() //nolint:errcheck
		cls = classifier.FromConfig(rt.cfg.Classifier, rt.logger)
	}

	result := cls.Classify(cmd.Context(), title, description)
	out, err := json.MarshalIndent(dto.ClassificationResponse{
		Priority:    result.Priority,
		Explanation: result.Explanation,
		Origin:      result.Origin,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
