package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quizhub/quizctl/internal/model"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfileUploadImageCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile as the server has it",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			user, err := app.Client.GetProfile(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch profile: %w", err)
			}
			out.Print(user)
			return nil
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	patch := &model.UserPatch{}
	var firstName, lastName, dateOfBirth, gender, country, street, number string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields; only the flags you pass change",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			if cmd.Flags().Changed("first-name") {
				patch.FirstName = &firstName
			}
			if cmd.Flags().Changed("last-name") {
				patch.LastName = &lastName
			}
			if cmd.Flags().Changed("date-of-birth") {
				patch.DateOfBirth = &dateOfBirth
			}
			if cmd.Flags().Changed("gender") {
				patch.Gender = &gender
			}
			if cmd.Flags().Changed("country") {
				patch.Country = &country
			}
			if cmd.Flags().Changed("street") {
				patch.Street = &street
			}
			if cmd.Flags().Changed("number") {
				patch.Number = &number
			}

			user, err := app.Session.UpdateProfile(cmd.Context(), patch)
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			out.Print(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&dateOfBirth, "date-of-birth", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&country, "country", "", "Country")
	cmd.Flags().StringVar(&street, "street", "", "Street")
	cmd.Flags().StringVar(&number, "number", "", "House number")

	return cmd
}

func newProfileUploadImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <path>",
		Short: "Upload a profile image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer func() { _ = f.Close() }()

			path, err := app.Client.UploadProfileImage(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return fmt.Errorf("failed to upload image: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("Uploaded: %s", path))
			return nil
		},
	}
}
