package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/backend"
	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/onboarding"
	"github.com/spigell/edubridge/internal/secrets"
)

const passwordEnv = envPrefix + "_PASSWORD"

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account, optionally with a resume for role suggestions",
	Run: func(cmd *cobra.Command, _ []string) {
		application, config, logger := setup()
		ctx := context.Background()

		name := askIfEmpty(cmd.Flag("name").Value.String(), "Name", logger)
		email := askIfEmpty(cmd.Flag("email").Value.String(), "Email", logger)
		password := resolvePassword(cmd, config, logger)

		var resume *backend.File
		if path := cmd.Flag("resume").Value.String(); path != "" {
			file, err := readResume(path)
			if err != nil {
				logger.Fatal("reading resume", zap.Error(err))
			}
			resume = file
		}

		err := application.Onboarding.Register(ctx, onboarding.Registration{
			Name:     name,
			Email:    email,
			Password: password,
			Resume:   resume,
		})
		if err != nil {
			logger.Fatal("registering", zap.Error(err))
		}

		roles := application.Onboarding.Suggestions()
		logger.Info("registered", zap.String("email", email), zap.Int("suggested_roles", len(roles)))

		if err := render(cmd.OutOrStdout(), career.ResumeAnalysis{SuggestedRoles: roles}, func(w io.Writer) {
			writeAnalysis(w, career.ResumeAnalysis{SuggestedRoles: roles})
			fmt.Fprintf(w, "\nNext: %s role\n", app)
		}); err != nil {
			logger.Fatal("rendering", zap.Error(err))
		}
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	Run: func(cmd *cobra.Command, _ []string) {
		application, config, logger := setup()

		email := askIfEmpty(cmd.Flag("email").Value.String(), "Email", logger)
		password := resolvePassword(cmd, config, logger)

		if err := application.Onboarding.Login(context.Background(), email, password); err != nil {
			if errors.Is(err, career.ErrPrecondition) {
				logger.Fatal("logging in", zap.Error(err), zap.String("hint", fmt.Sprintf("run '%s logout' first", app)))
			}
			logger.Fatal("logging in", zap.Error(err))
		}

		session := application.Store.Session()
		logger.Info("logged in",
			zap.String("email", session.Email),
			zap.String("role", session.SelectedRole),
			zap.String("state", application.Onboarding.State().String()),
		)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the local session",
	Run: func(_ *cobra.Command, _ []string) {
		application, _, logger := setup()

		if err := application.Logout(); err != nil {
			logger.Fatal("logging out", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringP("email", "e", "", "account email")
		c.Flags().String("password-file", "", "file containing the password (or set "+passwordEnv+")")
	}
	registerCmd.Flags().StringP("name", "n", "", "display name")
	registerCmd.Flags().StringP("resume", "r", "", "resume file to analyse at sign-up")
}

// resolvePassword reads the password from the flag, the config, the
// environment, and finally asks for it.
func resolvePassword(cmd *cobra.Command, config *Config, logger *zap.Logger) string {
	file := cmd.Flag("password-file").Value.String()
	if file == "" {
		file = config.PasswordFile
	}

	password, err := secrets.Load(secrets.Source{
		Name: "password",
		File: file,
		Env:  passwordEnv,
	})
	if err == nil {
		return password
	}
	if !errors.Is(err, secrets.ErrNotConfigured) {
		logger.Fatal("loading password", zap.Error(err))
	}

	prompt := promptui.Prompt{Label: "Password", Mask: '*'}
	password, err = prompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
	return password
}

func askIfEmpty(value, label string, logger *zap.Logger) string {
	if value != "" {
		return value
	}

	prompt := promptui.Prompt{Label: label}
	answer, err := prompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
	return answer
}

func readResume(path string) (*backend.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &backend.File{Name: filepath.Base(path), Data: data}, nil
}
