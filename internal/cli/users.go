package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quizhub/quizctl/internal/api"
	"github.com/quizhub/quizctl/internal/model"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer platform accounts (administrators only)",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersRoleCmd())
	cmd.AddCommand(newUsersBlockCmd())
	cmd.AddCommand(newUsersUnblockCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	cmd.AddCommand(newUsersStatsCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var page, perPage int
	var search, role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleAdministrator); err != nil {
				return err
			}

			list, err := app.Client.ListUsers(cmd.Context(), api.ListUsersParams{
				Page:    page,
				PerPage: perPage,
				Search:  search,
				Role:    model.Role(role),
			})
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			out.Print(list)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Results per page")
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or email")
	cmd.Flags().StringVar(&role, "role", "", "Filter by role (PLAYER, MODERATOR, ADMINISTRATOR)")

	return cmd
}

func newUsersRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role <user-id> <role>",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleAdministrator); err != nil {
				return err
			}

			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			role := model.Role(args[1])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", args[1])
			}

			if err := app.Client.UpdateUserRole(cmd.Context(), id, role); err != nil {
				return fmt.Errorf("failed to change role: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("User %d is now %s", id, role))
			return nil
		},
	}
}

func newUsersBlockCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "block <user-id>",
		Short: "Block an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleAdministrator); err != nil {
				return err
			}

			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}

			if err := app.Client.BlockUser(cmd.Context(), id, hours); err != nil {
				return fmt.Errorf("failed to block user: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("User %d blocked for %d hours", id, hours))
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "Block duration in hours")

	return cmd
}

func newUsersUnblockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <user-id>",
		Short: "Lift an account's block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleAdministrator); err != nil {
				return err
			}

			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}

			if err := app.Client.UnblockUser(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to unblock user: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("User %d unblocked", id))
			return nil
		},
	}
}

func newUsersDeleteCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleAdministrator); err != nil {
				return err
			}

			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("deleting user %d is irreversible; re-run with --yes", id)
			}

			if err := app.Client.DeleteUser(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("User %d deleted", id))
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion")

	return cmd
}

func newUsersStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate account counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RoleAdministrator); err != nil {
				return err
			}

			stats, err := app.Client.GetUserStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch user stats: %w", err)
			}
			out.Print(stats)
			return nil
		},
	}
}

func parseUserID(raw string) (model.UserID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return model.UserID(id), nil
}
