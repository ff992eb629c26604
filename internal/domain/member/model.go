package member

import (
	"errors"
	"fmt"
	"strings"
)

// Business rule constants
const (
	// JuniorAgeLimit is the first age that counts as senior.
	JuniorAgeLimit = 18
	MinAge         = 0
	MaxAge         = 120
)

// Category is the membership category.
type Category string

// Category values
const (
	CategoryCompetitive Category = "COMPETITIVE"
	CategoryExercise    Category = "EXERCISE"
)

// Level is the informational membership level. It is not derived from age.
type Level string

// Level values
const (
	LevelJunior Level = "JUNIOR"
	LevelSenior Level = "SENIOR"
)

// MembershipStatus distinguishes members who train from supporting members.
type MembershipStatus string

// MembershipStatus values
const (
	StatusActive  MembershipStatus = "ACTIVE"
	StatusPassive MembershipStatus = "PASSIVE"
)

// PaymentStatus is the member's fee standing. Only the payment flow sets it.
type PaymentStatus string

// PaymentStatus values
const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentComplete PaymentStatus = "COMPLETE"
	PaymentFailed   PaymentStatus = "FAILED"
)

// Activity is the member's swim discipline.
type Activity string

// Activity values
const (
	ActivityNone         Activity = "NONE"
	ActivityButterfly    Activity = "BUTTERFLY"
	ActivityCrawl        Activity = "CRAWL"
	ActivityBackstroke   Activity = "BACKSTROKE"
	ActivityBreaststroke Activity = "BREASTSTROKE"
)

// Domain errors
var (
	ErrUnknownMembershipType = errors.New("membership type must be one of COMPETITIVE_JUNIOR, COMPETITIVE_SENIOR, EXERCISE_JUNIOR, EXERCISE_SENIOR")
	ErrUnknownStatus         = errors.New("membership status must be ACTIVE or PASSIVE")
	ErrUnknownPaymentStatus  = errors.New("payment status must be PENDING, COMPLETE or FAILED")
	ErrUnknownActivity       = errors.New("activity must be NONE, BUTTERFLY, CRAWL, BACKSTROKE or BREASTSTROKE")
)

// MembershipType is the composite of category and level.
type MembershipType struct {
	Category Category
	Level    Level
}

// MembershipTypes lists every recognized membership type.
var MembershipTypes = []MembershipType{
	{CategoryCompetitive, LevelJunior},
	{CategoryCompetitive, LevelSenior},
	{CategoryExercise, LevelJunior},
	{CategoryExercise, LevelSenior},
}

// String returns the canonical encoding, e.g. COMPETITIVE_SENIOR.
func (t MembershipType) String() string {
	return string(t.Category) + "_" + string(t.Level)
}

// ParseMembershipType parses a category×level string.
// PRE: none
// POST: Returns a recognized type, or ErrUnknownMembershipType
// Matching is case-insensitive; a space or '-' may stand in for '_'.
func ParseMembershipType(s string) (MembershipType, error) {
	norm := normalize(s)
	for _, t := range MembershipTypes {
		if t.String() == norm {
			return t, nil
		}
	}
	return MembershipType{}, ErrUnknownMembershipType
}

// ParseStatus parses ACTIVE or PASSIVE, case-insensitively.
func ParseStatus(s string) (MembershipStatus, error) {
	switch v := MembershipStatus(normalize(s)); v {
	case StatusActive, StatusPassive:
		return v, nil
	}
	return "", ErrUnknownStatus
}

// ParsePaymentStatus parses PENDING, COMPLETE or FAILED, case-insensitively.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch v := PaymentStatus(normalize(s)); v {
	case PaymentPending, PaymentComplete, PaymentFailed:
		return v, nil
	}
	return "", ErrUnknownPaymentStatus
}

// ParseActivity parses a swim discipline. An empty string means NONE.
func ParseActivity(s string) (Activity, error) {
	if strings.TrimSpace(s) == "" {
		return ActivityNone, nil
	}
	switch v := Activity(normalize(s)); v {
	case ActivityNone, ActivityButterfly, ActivityCrawl, ActivityBackstroke, ActivityBreaststroke:
		return v, nil
	}
	return "", ErrUnknownActivity
}

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// Variant is the member kind fixed at construction.
type Variant uint8

// Variant values
const (
	VariantJunior Variant = iota
	VariantSenior
)

// String returns "Junior" or "Senior".
func (v Variant) String() string {
	if v == VariantJunior {
		return "Junior"
	}
	return "Senior"
}

// VariantForAge selects the variant for a member of the given age.
func VariantForAge(age int) Variant {
	if age < JuniorAgeLimit {
		return VariantJunior
	}
	return VariantSenior
}

// Address is the member's postal address.
type Address struct {
	City    string
	Street  string
	Region  string
	Zipcode string
}

// Details carries the user-editable attributes of a member.
type Details struct {
	Name     string
	Email    string
	Age      int
	Phone    int
	Address  Address
	Type     MembershipType
	Status   MembershipStatus
	Activity Activity
}

// Member holds state for the concept.
type Member struct {
	ID            int
	Name          string
	Email         string
	Age           int
	Phone         int
	Address       Address
	Type          MembershipType
	Status        MembershipStatus
	Activity      Activity
	PaymentStatus PaymentStatus
	Variant       Variant
}

// New constructs a member with the given id.
// PRE: d has passed validation
// POST: Variant chosen from d.Age; PaymentStatus is PENDING
func New(id int, d Details) Member {
	m := Member{
		ID:            id,
		PaymentStatus: PaymentPending,
		Variant:       VariantForAge(d.Age),
	}
	m.Apply(d)
	if m.Activity == "" {
		m.Activity = ActivityNone
	}
	return m
}

// Apply overwrites the editable attributes in place.
// INVARIANT: ID, Variant and PaymentStatus are not mutated
func (m *Member) Apply(d Details) {
	m.Name = d.Name
	m.Email = d.Email
	m.Age = d.Age
	m.Phone = d.Phone
	m.Address = d.Address
	m.Type = d.Type
	m.Status = d.Status
	m.Activity = d.Activity
}

// Details returns the editable attributes.
func (m Member) Details() Details {
	return Details{
		Name:     m.Name,
		Email:    m.Email,
		Age:      m.Age,
		Phone:    m.Phone,
		Address:  m.Address,
		Type:     m.Type,
		Status:   m.Status,
		Activity: m.Activity,
	}
}

// IsActive returns true if the member trains (fee tier depends on age).
func (m Member) IsActive() bool {
	return m.Status == StatusActive
}

// IsPaid returns true if the member's fee is settled.
func (m Member) IsPaid() bool {
	return m.PaymentStatus == PaymentComplete
}

// Description describes the member from its variant and membership type.
func (m Member) Description() string {
	return Describe(m.Variant, m.Type)
}

// Describe is the pure description of a variant holding a membership type.
func Describe(v Variant, t MembershipType) string {
	category := "exercise"
	if t.Category == CategoryCompetitive {
		category = "competitive"
	}
	level := strings.ToLower(string(t.Level))
	return fmt.Sprintf("%s member with %s membership (%s level)", v, category, level)
}
