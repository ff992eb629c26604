// Package console shapes service results into the messages shown by the CLI.
// Controllers never return Go errors; failures become "Error: <reason>" lines.
package console

import (
	"errors"
	"fmt"

	"swimclub/internal/application/payments"
	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
)

// unsavedWarning is appended while member changes exist only in memory.
const unsavedWarning = "Warning: member changes could not be saved to disk and exist only in memory."

// errorMessage renders err for the user.
// IO failures are warnings: the change is kept in memory.
func errorMessage(err error) string {
	if errors.Is(err, failure.ErrIOFailure) {
		return "Warning: changes could not be saved to disk: " + failure.Reason(err)
	}
	return "Error: " + failure.Reason(err)
}

// memberLine renders one member for list output.
func memberLine(m member.Member) string {
	return fmt.Sprintf("#%d %s, age %d, %s, %s, %s", m.ID, m.Name, m.Age, m.Type, m.Status, m.PaymentStatus)
}

func memberLines(members []member.Member) []string {
	if len(members) == 0 {
		return []string{"No members."}
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, memberLine(m))
	}
	return out
}

func dkk(v float64) string {
	return payments.FormatAmount(v) + " DKK"
}
