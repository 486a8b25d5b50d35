package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quizhub/quizctl/internal/model"
)

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Browse, author, moderate and play quizzes",
	}

	cmd.AddCommand(newQuizListCmd())
	cmd.AddCommand(newQuizMineCmd())
	cmd.AddCommand(newQuizCreateCmd())
	cmd.AddCommand(newQuizUpdateCmd())
	cmd.AddCommand(newQuizApproveCmd())
	cmd.AddCommand(newQuizRejectCmd())
	cmd.AddCommand(newQuizPlayCmd())
	cmd.AddCommand(newQuizSubmitCmd())
	cmd.AddCommand(newQuizLeaderboardCmd())
	cmd.AddCommand(newQuizResultsCmd())
	cmd.AddCommand(newQuizStatsCmd())

	return cmd
}

func newQuizListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			quizzes, err := app.Client.ListQuizzes(cmd.Context(), model.QuizStatus(status))
			if err != nil {
				return fmt.Errorf("failed to list quizzes: %w", err)
			}
			out.Print(quizzes)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, APPROVED, REJECTED)")

	return cmd
}

func newQuizMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			quizzes, err := app.Client.ListMyQuizzes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list quizzes: %w", err)
			}
			out.Print(quizzes)
			return nil
		},
	}
}

func newQuizCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new quiz for moderation from a JSON draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			draft, err := loadDraft(file)
			if err != nil {
				return err
			}

			quiz, err := app.Client.CreateQuiz(cmd.Context(), draft)
			if err != nil {
				return fmt.Errorf("failed to create quiz: %w", err)
			}
			out.Print(quiz)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON draft file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newQuizUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <quiz-id>",
		Short: "Edit a quiz; the edit sends it back to moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			draft, err := loadDraft(file)
			if err != nil {
				return err
			}

			quiz, err := app.Client.UpdateQuiz(cmd.Context(), id, draft)
			if err != nil {
				return fmt.Errorf("failed to update quiz: %w", err)
			}
			out.Print(quiz)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON draft file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newQuizApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <quiz-id>",
		Short: "Approve a pending quiz (moderators)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleModerator); err != nil {
				return err
			}

			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}

			if err := app.Client.ApproveQuiz(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to approve quiz: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("Quiz %d approved", id))
			return nil
		},
	}
}

func newQuizRejectCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <quiz-id>",
		Short: "Reject a pending quiz with a reason (moderators)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleModerator); err != nil {
				return err
			}

			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			if reason == "" {
				return fmt.Errorf("a rejection reason is required")
			}

			if err := app.Client.RejectQuiz(cmd.Context(), id, reason); err != nil {
				return fmt.Errorf("failed to reject quiz: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("Quiz %d rejected", id))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the quiz was rejected")

	return cmd
}

func newQuizPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <quiz-id>",
		Short: "Fetch a quiz's questions, answers stripped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}

			quiz, err := app.Client.GetQuizForPlay(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch quiz: %w", err)
			}
			out.Print(quiz)
			return nil
		},
	}
}

func newQuizSubmitCmd() *cobra.Command {
	var answers string

	cmd := &cobra.Command{
		Use:   "submit <quiz-id>",
		Short: "Submit answers and get the scored result",
		Long: `Submit answers as a comma-separated list of option indexes,
one per question in order, e.g. --answers 0,2,1,3.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			submission, err := parseAnswers(answers)
			if err != nil {
				return err
			}

			result, err := app.Client.SubmitQuiz(cmd.Context(), id, submission)
			if err != nil {
				return fmt.Errorf("failed to submit quiz: %w", err)
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&answers, "answers", "a", "", "Comma-separated answer indexes")
	_ = cmd.MarkFlagRequired("answers")

	return cmd
}

func newQuizLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard <quiz-id>",
		Short: "Show a quiz's ranked results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}

			entries, err := app.Client.GetLeaderboard(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch leaderboard: %w", err)
			}
			out.Print(entries)
			return nil
		},
	}
}

func newQuizResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show your past quiz results",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			results, err := app.Client.GetMyResults(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch results: %w", err)
			}
			out.Print(results)
			return nil
		},
	}
}

func newQuizStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <quiz-id>",
		Short: "Show a quiz's attempt statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}

			stats, err := app.Client.GetQuizStatistics(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch statistics: %w", err)
			}
			out.Print(stats)
			return nil
		},
	}
}

func parseQuizID(raw string) (model.QuizID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quiz id %q", raw)
	}
	return model.QuizID(id), nil
}

func parseAnswers(raw string) (*model.QuizSubmission, error) {
	parts := strings.Split(raw, ",")
	answers := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid answer index %q", p)
		}
		answers = append(answers, n)
	}
	return &model.QuizSubmission{Answers: answers}, nil
}

func loadDraft(file string) (*model.QuizDraft, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}

	draft := &model.QuizDraft{}
	if err := json.Unmarshal(data, draft); err != nil {
		return nil, fmt.Errorf("invalid draft JSON: %w", err)
	}
	if draft.Title == "" {
		return nil, fmt.Errorf("draft is missing a title")
	}
	if len(draft.Questions) == 0 {
		return nil, fmt.Errorf("draft has no questions")
	}
	return draft, nil
}
