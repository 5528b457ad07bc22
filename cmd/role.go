package cmd

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/onboarding"
)

const PromptOtherRole = "Other..."

var roleCmd = &cobra.Command{
	Use:   "role [name]",
	Short: "Confirm a target role and generate its roadmap and projects",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		application, _, logger := setup()
		ctx := context.Background()

		var (
			report onboarding.GenerationReport
			err    error
		)

		if cmd.Flag("retry").Value.String() == "true" {
			report, err = application.Onboarding.RetryGeneration(ctx)
		} else {
			role := strings.Join(args, " ")
			if role == "" {
				suggestions, serr := application.SuggestedRoles(ctx)
				if serr != nil {
					logger.Warn("no role suggestions", zap.Error(serr))
				}
				role = chooseRole(suggestions, logger)
			}
			report, err = application.Onboarding.ConfirmRole(ctx, role)
		}

		switch {
		case err == nil:
		case errors.Is(err, career.ErrPartialFailure):
			logger.Warn("role confirmed, some generations failed",
				zap.Error(err),
				zap.String("hint", "run '"+app+" role --retry'"),
			)
		default:
			logger.Fatal("confirming role", zap.Error(err))
		}

		view := viewReport(report)
		if err := render(cmd.OutOrStdout(), view, func(w io.Writer) { writeReport(w, view) }); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(roleCmd)

	roleCmd.Flags().Bool("retry", false, "re-run the generations that failed for the confirmed role")
}

func chooseRole(suggestions []string, logger *zap.Logger) string {
	if len(suggestions) == 0 {
		return askIfEmpty("", "Target role", logger)
	}

	prompt := promptui.Select{
		Label: "Choose a target role",
		Items: append(append([]string(nil), suggestions...), PromptOtherRole),
	}

	_, selected, err := prompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	if selected == PromptOtherRole {
		return askIfEmpty("", "Target role", logger)
	}
	return selected
}
