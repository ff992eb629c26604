package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"swimclub/internal/adapters/console"
	"swimclub/internal/app"
	"swimclub/internal/application/listutil"
	"swimclub/internal/application/orchestrators"
	"swimclub/internal/domain/account"
	"swimclub/internal/domain/member"
)

// memberFlags binds the member attribute flags shared by register and update.
type memberFlags struct {
	in orchestrators.MemberInput
}

func (f *memberFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Name, "name", "", "full name")
	fs.StringVar(&f.in.Email, "email", "", "email address")
	fs.IntVar(&f.in.Age, "age", 0, "age in years")
	fs.IntVar(&f.in.Phone, "phone", 0, "8-digit phone number")
	fs.StringVar(&f.in.City, "city", "", "city")
	fs.StringVar(&f.in.Street, "street", "", "street and number")
	fs.StringVar(&f.in.Region, "region", "", "region")
	fs.StringVar(&f.in.Zipcode, "zipcode", "", "zipcode")
	fs.StringVar(&f.in.MembershipType, "type", "", "COMPETITIVE_JUNIOR, COMPETITIVE_SENIOR, EXERCISE_JUNIOR or EXERCISE_SENIOR")
	fs.StringVar(&f.in.Status, "status", "", "ACTIVE (default) or PASSIVE")
	fs.StringVar(&f.in.Activity, "activity", "", "NONE, BUTTERFLY, CRAWL, BACKSTROKE or BREASTSTROKE")
}

// overlay fills every flag the user did not set from the existing member.
func (f *memberFlags) overlay(fs *pflag.FlagSet, m member.Member) orchestrators.MemberInput {
	in := f.in
	keep := func(name string, apply func()) {
		if !fs.Changed(name) {
			apply()
		}
	}
	keep("name", func() { in.Name = m.Name })
	keep("email", func() { in.Email = m.Email })
	keep("age", func() { in.Age = m.Age })
	keep("phone", func() { in.Phone = m.Phone })
	keep("city", func() { in.City = m.Address.City })
	keep("street", func() { in.Street = m.Address.Street })
	keep("region", func() { in.Region = m.Address.Region })
	keep("zipcode", func() { in.Zipcode = m.Address.Zipcode })
	keep("type", func() { in.MembershipType = m.Type.String() })
	keep("status", func() { in.Status = string(m.Status) })
	keep("activity", func() { in.Activity = string(m.Activity) })
	return in
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid member id %q", s)
	}
	return id, nil
}

func (c *cli) memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Register and administer members",
	}

	var reg memberFlags
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new member",
		Args:  cobra.NoArgs,
		RunE: c.withApp(account.PermManageMembers, func(cmd *cobra.Command, a *app.App, _ []string) error {
			return emit(cmd, a.MemberController.Register(cmd.Context(), reg.in))
		}),
	}
	reg.bind(registerCmd.Flags())

	var upd memberFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a member's attributes; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(account.PermManageMembers, func(cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			existing, ok := a.Members.FindByID(id)
			if !ok {
				return emit(cmd, fmt.Sprintf("Error: no member with id %d", id))
			}
			return emit(cmd, a.MemberController.Update(cmd.Context(), id, upd.overlay(cmd.Flags(), existing)))
		}),
	}
	upd.bind(updateCmd.Flags())

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member without recorded payments",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(account.PermManageMembers, func(cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, a.MemberController.Delete(cmd.Context(), id))
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one member",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(account.PermReadMembers, func(cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, a.MemberController.Show(id)...)
		}),
	}

	var (
		page, perPage int
		sortBy, dir   string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all members",
		Args:  cobra.NoArgs,
		RunE: c.withApp(account.PermReadMembers, func(cmd *cobra.Command, a *app.App, _ []string) error {
			f := cmd.Flags()
			if !f.Changed("page") && !f.Changed("per-page") && !f.Changed("sort") && !f.Changed("dir") {
				return emit(cmd, a.MemberController.List()...)
			}
			return emit(cmd, a.MemberController.ListPage(page, perPage, sortBy, dir)...)
		}),
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")
	listCmd.Flags().IntVar(&perPage, "per-page", listutil.DefaultPerPage, "members per page (10, 20, 50, 100 or 200)")
	listCmd.Flags().StringVar(&sortBy, "sort", "id", "sort column: "+strings.Join(console.MemberSortColumns, ", "))
	listCmd.Flags().StringVar(&dir, "dir", "asc", "sort direction: asc or desc")

	searchCmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find members by name",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(account.PermReadMembers, func(cmd *cobra.Command, a *app.App, args []string) error {
			return emit(cmd, a.MemberController.Search(args[0])...)
		}),
	}

	var dryRun, updateExisting bool
	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Register members from a CSV file with a header row",
		Long: "Register members from a CSV file. The header must name the columns NAME, EMAIL, AGE, PHONE and TYPE;\n" +
			"CITY, STREET, REGION, ZIPCODE, STATUS and ACTIVITY are optional. Rows whose email matches an existing\n" +
			"member are skipped unless --update is given.",
		Args: cobra.ExactArgs(1),
		RunE: c.withApp(account.PermManageMembers, func(cmd *cobra.Command, a *app.App, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return emit(cmd, a.MemberController.Import(cmd.Context(), f, dryRun, updateExisting)...)
		}),
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate rows without saving")
	importCmd.Flags().BoolVar(&updateExisting, "update", false, "update members whose email already exists")

	cmd.AddCommand(registerCmd, updateCmd, deleteCmd, showCmd, listCmd, searchCmd, importCmd)
	return cmd
}
