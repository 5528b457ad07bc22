package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/career"
)

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Show the last mock interview result",
	Run: func(cmd *cobra.Command, _ []string) {
		application, _, logger := setup()

		result, ok := application.Store.LastResult()
		if !ok {
			logger.Info("no interview result yet", zap.String("hint", "run '"+app+" interview'"))
			return
		}

		if err := render(cmd.OutOrStdout(), result, func(w io.Writer) { writeResult(w, *result) }); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the account, roadmap and projects",
	Run: func(cmd *cobra.Command, _ []string) {
		application, _, logger := setup()

		profile, err := application.Profile(context.Background())
		if err != nil {
			fatalFetch(logger, "fetching profile", err)
		}

		if err := render(cmd.OutOrStdout(), profile, func(w io.Writer) { writeProfile(w, profile) }); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Show the learning roadmap for the confirmed role",
	Run: func(cmd *cobra.Command, _ []string) {
		application, _, logger := setup()

		roadmap, err := application.Roadmap(context.Background())
		if err != nil {
			fatalFetch(logger, "fetching roadmap", err)
		}

		if err := render(cmd.OutOrStdout(), roadmap, func(w io.Writer) { writeRoadmap(w, roadmap) }); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Show the suggested portfolio projects",
	Run: func(cmd *cobra.Command, _ []string) {
		application, _, logger := setup()

		projects, err := application.Projects(context.Background())
		if err != nil {
			fatalFetch(logger, "fetching projects", err)
		}

		if err := render(cmd.OutOrStdout(), projects, func(w io.Writer) { writeProjects(w, projects) }); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(resultCmd, profileCmd, roadmapCmd, projectsCmd)
}

func fatalFetch(logger *zap.Logger, step string, err error) {
	if errors.Is(err, career.ErrUnauthenticated) {
		logger.Fatal(step, zap.Error(err), zap.String("hint", "run '"+app+" login'"))
	}
	logger.Fatal(step, zap.Error(err))
}
