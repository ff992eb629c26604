package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"swimclub/internal/app"
	"swimclub/internal/domain/account"
)

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// memberAction builds a payments command taking a single member id.
func (c *cli) memberAction(use, short string, run func(cmd *cobra.Command, a *app.App, id int) []string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <member-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(account.PermPayments, func(cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, run(cmd, a, id)...)
		}),
	}
}

// reportAction builds a payments command without arguments.
func (c *cli) reportAction(use, short string, run func(cmd *cobra.Command, a *app.App) []string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: c.withApp(account.PermPayments, func(cmd *cobra.Command, a *app.App, _ []string) error {
			return emit(cmd, run(cmd, a)...)
		}),
	}
}

func (c *cli) paymentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Register payments and report on fees",
	}

	registerCmd := &cobra.Command{
		Use:   "register <member-id> <amount>",
		Short: "Register a completed payment",
		Args:  cobra.ExactArgs(2),
		RunE: c.withApp(account.PermPayments, func(cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return emit(cmd, a.PaymentController.RegisterPayment(cmd.Context(), id, amount))
		}),
	}

	cmd.AddCommand(
		registerCmd,
		c.memberAction("fee", "Show a member's yearly fee", func(_ *cobra.Command, a *app.App, id int) []string {
			return []string{a.PaymentController.CalculateFee(id)}
		}),
		c.memberAction("history", "List a member's payments", func(_ *cobra.Command, a *app.App, id int) []string {
			return a.PaymentController.History(id)
		}),
		c.memberAction("fail", "Mark a member's payment as failed", func(cmd *cobra.Command, a *app.App, id int) []string {
			return []string{a.PaymentController.MarkFailed(cmd.Context(), id)}
		}),
		c.reportAction("summary", "Show paid and pending totals", func(_ *cobra.Command, a *app.App) []string {
			return []string{a.PaymentController.Summary()}
		}),
		c.reportAction("paid", "List members who have paid", func(_ *cobra.Command, a *app.App) []string {
			return a.PaymentController.PaidList()
		}),
		c.reportAction("pending", "List members with an outstanding fee", func(_ *cobra.Command, a *app.App) []string {
			return a.PaymentController.PendingList()
		}),
		c.reportAction("income", "Show the expected yearly income", func(_ *cobra.Command, a *app.App) []string {
			return []string{a.PaymentController.ExpectedIncome()}
		}),
		c.reportAction("new-season", "Reset every member to PENDING", func(cmd *cobra.Command, a *app.App) []string {
			return []string{a.PaymentController.StartNewSeason(cmd.Context())}
		}),
	)
	return cmd
}

func (c *cli) ratesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show and change the junior and senior rates",
	}

	showCmd := c.reportAction("show", "Show the current rates", func(_ *cobra.Command, a *app.App) []string {
		return []string{a.PaymentController.Rates()}
	})

	var junior, senior string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or both rates",
		Args:  cobra.NoArgs,
		RunE: c.withApp(account.PermPayments, func(cmd *cobra.Command, a *app.App, _ []string) error {
			if junior == "" && senior == "" {
				return fmt.Errorf("set --junior, --senior or both")
			}
			var lines []string
			if junior != "" {
				v, err := parseAmount(junior)
				if err != nil {
					return err
				}
				lines = append(lines, a.PaymentController.SetJuniorRate(cmd.Context(), v))
			}
			if senior != "" {
				v, err := parseAmount(senior)
				if err != nil {
					return err
				}
				lines = append(lines, a.PaymentController.SetSeniorRate(cmd.Context(), v))
			}
			return emit(cmd, lines...)
		}),
	}
	setCmd.Flags().StringVar(&junior, "junior", "", "new junior rate in DKK")
	setCmd.Flags().StringVar(&senior, "senior", "", "new senior rate in DKK")

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

func (c *cli) reminderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "Manage payment reminders",
	}

	addCmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a free-text reminder",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.withApp(account.PermPayments, func(cmd *cobra.Command, a *app.App, args []string) error {
			return emit(cmd, a.PaymentController.AddReminder(cmd.Context(), strings.Join(args, " ")))
		}),
	}

	removeCmd := &cobra.Command{
		Use:   "remove <text>...",
		Short: "Remove a reminder by its exact text",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.withApp(account.PermPayments, func(cmd *cobra.Command, a *app.App, args []string) error {
			return emit(cmd, a.PaymentController.RemoveReminder(cmd.Context(), strings.Join(args, " ")))
		}),
	}

	cmd.AddCommand(
		addCmd,
		removeCmd,
		c.reportAction("list", "List every reminder", func(_ *cobra.Command, a *app.App) []string {
			return a.PaymentController.Reminders()
		}),
		c.reportAction("clear", "Remove every reminder", func(cmd *cobra.Command, a *app.App) []string {
			return []string{a.PaymentController.ClearReminders(cmd.Context())}
		}),
		c.reportAction("generate", "Add a reminder for every unpaid member", func(cmd *cobra.Command, a *app.App) []string {
			return []string{a.PaymentController.GenerateReminders(cmd.Context())}
		}),
		c.reportAction("send", "Email reminders to their members", func(cmd *cobra.Command, a *app.App) []string {
			return []string{a.PaymentController.SendReminders(cmd.Context())}
		}),
	)
	return cmd
}
