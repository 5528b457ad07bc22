package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/coach"
	"github.com/spigell/edubridge/internal/interview"
)

const (
	PromptRetryEvaluation = "Retry evaluation"
	PromptNewQuestions    = "Start over with new questions"
	PromptQuit            = "Quit"
)

var errQuit = errors.New("quit requested")

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run a mock interview for the confirmed role",
	Run: func(cmd *cobra.Command, _ []string) {
		application, _, logger := setup()
		ctx := context.Background()

		session := application.Interview
		if err := session.Start(ctx); err != nil {
			if errors.Is(err, career.ErrNoQuestions) {
				logger.Info("exiting", zap.String("reason", "the server returned no questions"))
				return
			}
			logger.Fatal("starting interview", zap.Error(err))
		}

		logger.Info("interview started",
			zap.Int("questions", len(session.Questions())),
			zap.String("attempt_id", session.AttemptID()),
		)

		err := askQuestions(ctx, session)
		for err != nil {
			if errors.Is(err, errQuit) {
				logger.Info("exiting", zap.String("reason", "interview abandoned"))
				session.Reset()
				return
			}
			if session.State().Phase != interview.Failed {
				logger.Fatal("interview", zap.Error(err))
			}

			logger.Warn("evaluation failed, answers are kept", zap.Error(err))
			err = recoverEvaluation(ctx, application)
		}

		result, ok := session.Result()
		if !ok {
			logger.Fatal("interview finished without a result")
		}
		if err := render(cmd.OutOrStdout(), result, func(w io.Writer) { writeResult(w, *result) }); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)
}

// askQuestions answers every remaining question. The last Advance submits the
// answers and blocks until they are evaluated.
func askQuestions(ctx context.Context, session *interview.Session) error {
	total := len(session.Questions())
	for {
		q, ok := session.Current()
		if !ok {
			return nil
		}

		prompt := promptui.Prompt{
			Label: fmt.Sprintf("[%d/%d] %s", session.State().Index+1, total, q.Text),
		}
		answer, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errQuit
			}
			return err
		}

		if err := session.RecordAnswer(answer); err != nil {
			return err
		}
		if err := session.Advance(ctx); err != nil {
			return err
		}
	}
}

func recoverEvaluation(ctx context.Context, application *coach.App) error {
	prompt := promptui.Select{
		Label: "Evaluation failed",
		Items: []string{PromptRetryEvaluation, PromptNewQuestions, PromptQuit},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return errQuit
	}

	session := application.Interview
	switch action {
	case PromptRetryEvaluation:
		return session.Evaluate(ctx)
	case PromptNewQuestions:
		if err := session.Start(ctx); err != nil {
			return err
		}
		return askQuestions(ctx, session)
	default:
		return errQuit
	}
}
