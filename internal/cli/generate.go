package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"videoquiz/internal/bootstrap"
	"videoquiz/internal/config"
	"videoquiz/internal/database"
	"videoquiz/internal/domain"
	"videoquiz/internal/dto"
	"videoquiz/internal/logger"
	"videoquiz/internal/repository"
	"videoquiz/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newGenerateCmd runs the quiz pipeline for one URL and prints the result.
// With --owner the quiz is also stored for that user.
func newGenerateCmd(configPath *string) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "generate <url>",
		Short: "Generate a quiz from a video URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			appCache, closeCache, err := bootstrap.NewCache(ctx, cfg.Redis, logger.Get())
			if err != nil {
				return err
			}
			defer closeCache()

			pipeline, err := bootstrap.NewQuizPipeline(ctx, cfg, appCache, logger.Get())
			if err != nil {
				return err
			}

			if owner == "" {
				return printGenerated(ctx, cmd.OutOrStdout(), pipeline, args[0])
			}
			return generateAndSave(ctx, cmd.OutOrStdout(), cfg, pipeline, owner, args[0])
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "username to store the generated quiz for")
	return cmd
}

func printGenerated(ctx context.Context, out io.Writer, runner service.QuizRunner, videoURL string) error {
	quiz, err := runner.Run(ctx, videoURL)
	if err != nil {
		return err
	}
	return writeJSON(out, quiz)
}

func generateAndSave(ctx context.Context, out io.Writer, cfg *config.Config, runner service.QuizRunner, username, videoURL string) error {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := repository.NewSQLXUserRepository(db).GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NewNotFoundError(fmt.Sprintf("user %q not found", username))
	}

	quizService := service.NewQuizService(
		repository.NewSQLXQuizRepository(db),
		repository.NewTransactionManagerAdapter(db, logger.Get()),
		runner,
		logger.Get(),
	)
	quiz, err := quizService.CreateFromURL(ctx, user.ID, videoURL)
	if err != nil {
		return err
	}
	logger.Get().Info("Quiz stored", zap.String("quizID", quiz.ID), zap.String("owner", username))
	return writeJSON(out, dto.NewQuizResponse(quiz))
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
