package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"swimclub/internal/application/listutil"
	"swimclub/internal/application/orchestrators"
	"swimclub/internal/domain/member"
)

// MemberRepository is the member collection as used by the member screens.
type MemberRepository interface {
	orchestrators.MemberStore
	FindAll() []member.Member
	FindByName(query string) []member.Member
	Unsaved() bool
}

// MemberController serves the member administration screens.
type MemberController struct {
	members   MemberRepository
	history   orchestrators.PaymentHistory
	delimiter string
}

// NewMemberController creates a controller over members and their payment history.
func NewMemberController(members MemberRepository, history orchestrators.PaymentHistory, delimiter string) *MemberController {
	return &MemberController{members: members, history: history, delimiter: delimiter}
}

// Register creates a member.
func (c *MemberController) Register(ctx context.Context, in orchestrators.MemberInput) string {
	id, err := orchestrators.ExecuteRegisterMember(ctx, orchestrators.RegisterMemberInput{MemberInput: in},
		orchestrators.RegisterMemberDeps{MemberStore: c.members, Delimiter: c.delimiter})
	if err != nil {
		return errorMessage(err)
	}
	m, _ := c.members.FindByID(id)
	return c.withUnsaved(fmt.Sprintf("Member %d registered: %s.", id, m.Description()))
}

// Update replaces a member's attributes.
func (c *MemberController) Update(ctx context.Context, id int, in orchestrators.MemberInput) string {
	err := orchestrators.ExecuteUpdateMember(ctx, orchestrators.UpdateMemberInput{ID: id, MemberInput: in},
		orchestrators.UpdateMemberDeps{MemberStore: c.members, Delimiter: c.delimiter})
	if err != nil {
		return errorMessage(err)
	}
	return c.withUnsaved(fmt.Sprintf("Member %d updated.", id))
}

// Delete removes a member without payments.
func (c *MemberController) Delete(ctx context.Context, id int) string {
	err := orchestrators.ExecuteDeleteMember(ctx, orchestrators.DeleteMemberInput{ID: id},
		orchestrators.DeleteMemberDeps{MemberStore: c.members, PaymentHistory: c.history})
	if err != nil {
		return errorMessage(err)
	}
	return c.withUnsaved(fmt.Sprintf("Member %d deleted.", id))
}

// Import registers or updates members from a CSV stream.
func (c *MemberController) Import(ctx context.Context, r io.Reader, dryRun, update bool) []string {
	res, err := orchestrators.ExecuteImportMembers(ctx, orchestrators.ImportMembersInput{
		Reader:     r,
		DryRun:     dryRun,
		UpdateMode: update,
	}, orchestrators.ImportMembersDeps{MemberStore: c.members, Delimiter: c.delimiter})
	if err != nil {
		return []string{errorMessage(err)}
	}
	summary := fmt.Sprintf("Imported %d rows: %d created, %d updated, %d skipped, %d rejected.",
		res.Total, res.Created, res.Updated, res.Skipped, len(res.Errors))
	if res.DryRun {
		summary += " Dry run, nothing was saved."
	}
	lines := []string{summary}
	if len(res.Unknown) > 0 {
		lines = append(lines, "Ignored columns: "+strings.Join(res.Unknown, ", "))
	}
	for _, e := range res.Errors {
		lines = append(lines, fmt.Sprintf("Row %d: %s", e.Row, e.Message))
	}
	if !res.DryRun && c.members.Unsaved() {
		lines = append(lines, unsavedWarning)
	}
	return lines
}

// Show renders every attribute of one member.
func (c *MemberController) Show(id int) []string {
	m, ok := c.members.FindByID(id)
	if !ok {
		return []string{fmt.Sprintf("Error: no member with id %d", id)}
	}
	return []string{
		"ID: " + strconv.Itoa(m.ID),
		"Name: " + m.Name,
		"Email: " + m.Email,
		"Age: " + strconv.Itoa(m.Age),
		"Phone: " + strconv.Itoa(m.Phone),
		fmt.Sprintf("Address: %s, %s %s, %s", m.Address.Street, m.Address.Zipcode, m.Address.City, m.Address.Region),
		"Membership: " + m.Type.String(),
		"Status: " + string(m.Status),
		"Activity: " + string(m.Activity),
		"Payment: " + string(m.PaymentStatus),
		"Description: " + m.Description(),
	}
}

// List renders every member ordered by id.
func (c *MemberController) List() []string {
	return memberLines(c.members.FindAll())
}

// MemberSortColumns are the columns a member listing can be sorted by.
var MemberSortColumns = []string{"id", "name", "age"}

// ListPage renders one page of members sorted by column.
// PRE: none; invalid page, per-page or sort values fall back to defaults
// POST: a footer line follows the rows when there is more than one page
func (c *MemberController) ListPage(page, perPage int, column, dir string) []string {
	members := c.members.FindAll()
	sortMembers(members, listutil.NewSortParams(column, dir, MemberSortColumns))
	rows, info := listutil.Paginate(members, listutil.NewPageParams(page, perPage))
	lines := memberLines(rows)
	if info.ShowPagination() {
		lines = append(lines, fmt.Sprintf("Showing %d-%d of %d members (page %d of %d)",
			info.StartRow(), info.EndRow(), info.Total, info.Page, info.TotalPages))
	}
	return lines
}

func sortMembers(members []member.Member, s listutil.SortParams) {
	less := func(a, b member.Member) bool { return a.ID < b.ID }
	switch s.Sort {
	case "name":
		less = func(a, b member.Member) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "age":
		less = func(a, b member.Member) bool { return a.Age < b.Age }
	}
	sort.SliceStable(members, func(i, j int) bool {
		if s.Desc() {
			return less(members[j], members[i])
		}
		return less(members[i], members[j])
	})
}

// Search renders the members whose name contains query.
func (c *MemberController) Search(query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{"Error: search text cannot be empty"}
	}
	return memberLines(c.members.FindByName(query))
}

func (c *MemberController) withUnsaved(msg string) string {
	if c.members.Unsaved() {
		return msg + "\n" + unsavedWarning
	}
	return msg
}
