package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/edificio/internal/domain"
)

const minPasswordLength = 8

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringP("email", "e", "", "Login email")
	userCreateCmd.Flags().StringP("name", "n", "Administrador", "Display name")
	userCreateCmd.Flags().StringP("password", "p", "", "Password (at least 8 characters)")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("password")
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage administrator accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator",
	Args:  cobra.NoArgs,
	RunE:  runUserCreate,
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must have at least %d characters", minPasswordLength)
	}

	a, err := appFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	u, err := createUser(cmd.Context(), a.users, email, name, password)
	if errors.Is(err, domain.ErrDuplicate) {
		return fmt.Errorf("a user with email %s already exists", email)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
	return nil
}
