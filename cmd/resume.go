package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <file>",
	Short: "Upload a resume and get role suggestions",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		application, _, logger := setup()

		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		path = askIfEmpty(path, "Resume file", logger)

		file, err := readResume(path)
		if err != nil {
			logger.Fatal("reading resume", zap.Error(err))
		}

		email := cmd.Flag("email").Value.String()
		if err := application.Onboarding.SubmitResume(context.Background(), file, email); err != nil {
			logger.Fatal("submitting resume", zap.Error(err))
		}

		analysis, _ := application.Store.Analysis()
		if err := render(cmd.OutOrStdout(), analysis, func(w io.Writer) {
			writeAnalysis(w, analysis)
			fmt.Fprintf(w, "\nNext: %s role\n", app)
		}); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().StringP("email", "e", "", "profile email (default is the logged in account)")
}
