package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
)

// ImportMemberStore is the member store as used by the import.
type ImportMemberStore interface {
	MemberStore
	FindAll() []member.Member
}

// ImportMembersInput carries the CSV stream and import options.
// PRE: Reader is a CSV stream with a header row
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true
// INVARIANT: Existing members are never deleted; ids and payment status are kept on update
type ImportMembersInput struct {
	Reader     io.Reader
	DryRun     bool
	UpdateMode bool
}

// ImportMembersResult holds aggregate counts and per-row errors from an import run.
type ImportMembersResult struct {
	Total   int
	Created int
	Updated int
	Skipped int
	Errors  []ImportMembersRowError
	DryRun  bool
	Unknown []string
}

// ImportMembersRowError describes a validation or processing error for a single CSV row.
type ImportMembersRowError struct {
	Row     int
	Message string
}

// ImportMembersDeps holds external dependencies for the import orchestrator.
type ImportMembersDeps struct {
	MemberStore ImportMemberStore
	Delimiter   string
}

// importColumns maps CSV header names to the input field they set.
var importColumns = map[string]func(*MemberInput, string) error{
	"NAME":     func(in *MemberInput, v string) error { in.Name = v; return nil },
	"EMAIL":    func(in *MemberInput, v string) error { in.Email = v; return nil },
	"AGE":      func(in *MemberInput, v string) error { return atoiColumn("age", v, &in.Age) },
	"PHONE":    func(in *MemberInput, v string) error { return atoiColumn("phone", v, &in.Phone) },
	"CITY":     func(in *MemberInput, v string) error { in.City = v; return nil },
	"STREET":   func(in *MemberInput, v string) error { in.Street = v; return nil },
	"REGION":   func(in *MemberInput, v string) error { in.Region = v; return nil },
	"ZIPCODE":  func(in *MemberInput, v string) error { in.Zipcode = v; return nil },
	"TYPE":     func(in *MemberInput, v string) error { in.MembershipType = v; return nil },
	"STATUS":   func(in *MemberInput, v string) error { in.Status = v; return nil },
	"ACTIVITY": func(in *MemberInput, v string) error { in.Activity = v; return nil },
}

// requiredImportColumns must be present in the header.
var requiredImportColumns = []string{"NAME", "EMAIL", "AGE", "PHONE", "TYPE"}

func atoiColumn(name, v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be a whole number, got %q", name, v)
	}
	*dst = n
	return nil
}

// ExecuteImportMembers parses a CSV stream and creates or updates members.
// PRE: Input.Reader holds a header with at least NAME, EMAIL, AGE, PHONE and TYPE
// POST: Rows matching an existing member by email are skipped, or updated when UpdateMode=true;
// other rows register new members; every row passes the same validation as a manual entry
// INVARIANT: When DryRun=true no writes occur
func ExecuteImportMembers(ctx context.Context, input ImportMembersInput, deps ImportMembersDeps) (ImportMembersResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportMembersResult{}, &ImportMembersValidationError{Message: "CSV header could not be read: " + err.Error()}
	}

	colIdx := make(map[string]int, len(header))
	var cols, unknownCols []string
	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(h))
		if _, ok := importColumns[name]; !ok {
			unknownCols = append(unknownCols, h)
			continue
		}
		if _, dup := colIdx[name]; !dup {
			cols = append(cols, name)
		}
		colIdx[name] = i
	}
	for _, col := range requiredImportColumns {
		if _, ok := colIdx[col]; !ok {
			return ImportMembersResult{}, &ImportMembersValidationError{Message: "CSV missing required column: " + col}
		}
	}

	byEmail := make(map[string]member.Member)
	for _, m := range deps.MemberStore.FindAll() {
		byEmail[strings.ToLower(m.Email)] = m
	}

	result := ImportMembersResult{DryRun: input.DryRun, Unknown: unknownCols}
	delimiter := delimiterOrDefault(deps.Delimiter)
	rowNum := 1

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		result.Total++
		if err != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: failure.Reason(err)})
			continue
		}

		email := strings.ToLower(column(row, colIdx, "EMAIL"))
		existing, exists := byEmail[email]
		if exists && !input.UpdateMode {
			result.Skipped++
			continue
		}

		var in MemberInput
		if exists {
			in = InputFromMember(existing)
		}
		if err := applyColumns(&in, row, cols, colIdx); err != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: failure.Reason(err)})
			continue
		}

		if input.DryRun {
			if _, err := in.details(delimiter); err != nil {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: failure.Reason(err)})
				continue
			}
			if exists {
				result.Updated++
			} else {
				result.Created++
			}
			continue
		}

		if exists {
			err = ExecuteUpdateMember(ctx, UpdateMemberInput{ID: existing.ID, MemberInput: in},
				UpdateMemberDeps{MemberStore: deps.MemberStore, Delimiter: delimiter})
			if err == nil {
				result.Updated++
			}
		} else {
			var id int
			id, err = ExecuteRegisterMember(ctx, RegisterMemberInput{MemberInput: in},
				RegisterMemberDeps{MemberStore: deps.MemberStore, Delimiter: delimiter})
			if err == nil {
				result.Created++
				if m, ok := deps.MemberStore.FindByID(id); ok {
					byEmail[email] = m
				}
			}
		}
		if err != nil {
			slog.Warn("members_import_row_rejected", "row", rowNum, "email", email, "err", err)
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: failure.Reason(err)})
		}
	}

	slog.Info("member_event",
		"event", "members_imported",
		"dry_run", input.DryRun,
		"update_mode", input.UpdateMode,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	return result, nil
}

func column(row []string, colIdx map[string]int, col string) string {
	i, ok := colIdx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// applyColumns sets the known columns in header order.
// Empty optional cells keep the value already in in.
func applyColumns(in *MemberInput, row []string, cols []string, colIdx map[string]int) error {
	for _, col := range cols {
		v := column(row, colIdx, col)
		if v == "" && !isRequiredColumn(col) {
			continue
		}
		if err := importColumns[col](in, v); err != nil {
			return err
		}
	}
	return nil
}

func isRequiredColumn(col string) bool {
	for _, c := range requiredImportColumns {
		if c == col {
			return true
		}
	}
	return false
}

// ImportMembersValidationError is returned when the CSV structure is invalid (e.g. missing required columns).
type ImportMembersValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ImportMembersValidationError) Error() string {
	return e.Message
}
