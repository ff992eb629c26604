package member

import (
	"fmt"
	"strconv"
	"strings"

	"swimclub/internal/adapters/storage"
	domain "swimclub/internal/domain/member"
	"swimclub/internal/domain/validate"
)

// fieldCount is the number of fields in a member record.
const fieldCount = 13

// EncodeMember renders m as a record line.
// PRE: m has passed validation
// POST: Returns an ErrInvalidInput error if a text field contains the delimiter or a line break
// Field order: memberId; name; email; city; street; region; zipcode; membershipType;
// membershipStatus; activityType; paymentStatus; age; phoneNumber.
func EncodeMember(m domain.Member, delimiter string) (string, error) {
	text := []struct{ field, value string }{
		{"name", m.Name},
		{"email", m.Email},
		{"city", m.Address.City},
		{"street", m.Address.Street},
		{"region", m.Address.Region},
		{"zipcode", m.Address.Zipcode},
	}
	for _, f := range text {
		if err := validate.RecordField(f.field, f.value, delimiter); err != nil {
			return "", err
		}
	}
	fields := []string{
		strconv.Itoa(m.ID),
		m.Name,
		m.Email,
		m.Address.City,
		m.Address.Street,
		m.Address.Region,
		m.Address.Zipcode,
		m.Type.String(),
		string(m.Status),
		string(m.Activity),
		string(m.PaymentStatus),
		strconv.Itoa(m.Age),
		strconv.Itoa(m.Phone),
	}
	return strings.Join(fields, delimiter), nil
}

// DecodeMember parses a record line.
// POST: Returns an error wrapping storage.ErrCorruptRecord on any malformed field
// The variant is selected from the stored age, as at construction.
func DecodeMember(line, delimiter string) (domain.Member, error) {
	f := strings.Split(line, delimiter)
	if len(f) != fieldCount {
		return domain.Member{}, fmt.Errorf("%w: member record has %d fields, want %d", storage.ErrCorruptRecord, len(f), fieldCount)
	}
	id, err := strconv.Atoi(strings.TrimSpace(f[0]))
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member id %q", storage.ErrCorruptRecord, f[0])
	}
	mType, err := domain.ParseMembershipType(f[7])
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member %d: %v", storage.ErrCorruptRecord, id, err)
	}
	status, err := domain.ParseStatus(f[8])
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member %d: %v", storage.ErrCorruptRecord, id, err)
	}
	activity, err := domain.ParseActivity(f[9])
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member %d: %v", storage.ErrCorruptRecord, id, err)
	}
	paymentStatus, err := domain.ParsePaymentStatus(f[10])
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member %d: %v", storage.ErrCorruptRecord, id, err)
	}
	age, err := strconv.Atoi(strings.TrimSpace(f[11]))
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member %d: age %q", storage.ErrCorruptRecord, id, f[11])
	}
	phone, err := strconv.Atoi(strings.TrimSpace(f[12]))
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member %d: phone %q", storage.ErrCorruptRecord, id, f[12])
	}

	m := domain.New(id, domain.Details{
		Name:  f[1],
		Email: f[2],
		Age:   age,
		Phone: phone,
		Address: domain.Address{
			City:    f[3],
			Street:  f[4],
			Region:  f[5],
			Zipcode: f[6],
		},
		Type:     mType,
		Status:   status,
		Activity: activity,
	})
	m.PaymentStatus = paymentStatus
	return m, nil
}
