package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"swimclub/internal/app"
	"swimclub/internal/application/orchestrators"
	"swimclub/internal/domain/account"
)

func (c *cli) accountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage staff accounts",
	}

	var in orchestrators.CreateAccountInput
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account; once accounts exist only a chairman may add more",
		Args:  cobra.NoArgs,
		RunE: c.withApp("", func(cmd *cobra.Command, a *app.App, _ []string) error {
			if a.Accounts.Count() > 0 {
				res, err := c.login(a, "")
				if err != nil {
					return err
				}
				if res.Role != account.RoleChairman {
					return account.ErrForbidden
				}
			}
			err := orchestrators.ExecuteCreateAccount(cmd.Context(), in, orchestrators.CreateAccountDeps{AccountStore: a.Accounts})
			if err != nil {
				return emit(cmd, "Error: "+err.Error())
			}
			return emit(cmd, fmt.Sprintf("Account %s created with role %s.", in.Username, in.Role))
		}),
	}
	addCmd.Flags().StringVar(&in.Username, "username", "", "login name")
	addCmd.Flags().StringVar(&in.Role, "role", account.RoleTreasurer, "chairman, treasurer or coach")
	addCmd.Flags().StringVar(&in.Password, "new-password", "", "password, at least 8 characters")

	var newPassword string
	passwdCmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the account given by --user",
		Args:  cobra.NoArgs,
		RunE: c.withApp("", func(cmd *cobra.Command, a *app.App, _ []string) error {
			user, password := c.credentials()
			if user == "" {
				return errLoginRequired
			}
			err := orchestrators.ExecuteChangePassword(cmd.Context(), orchestrators.ChangePasswordInput{
				Username:        user,
				CurrentPassword: password,
				NewPassword:     newPassword,
			}, orchestrators.ChangePasswordDeps{AccountStore: a.Accounts})
			if err != nil {
				return emit(cmd, "Error: "+err.Error())
			}
			return emit(cmd, fmt.Sprintf("Password changed for %s.", user))
		}),
	}
	passwdCmd.Flags().StringVar(&newPassword, "new-password", "", "new password, at least 8 characters")

	cmd.AddCommand(addCmd, passwdCmd)
	return cmd
}
