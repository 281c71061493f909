// internal/models/member.go
package models

// Membership types as elected on the application form.
const (
	TypeAnnual   = "Annual"
	TypeLife     = "Life"
	TypeHonorary = "Honorary"
)

// Application status values. Approve/Reject is an admin axis independent of
// the payment axis (Submitted/Paid/Due).
const (
	StatusSubmitted = "Submitted"
	StatusPaid      = "Paid"
	StatusDue       = "Due"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
)

// Member is the canonical per-member document stored at users/<memberId>.
// The payments slice is append-only: entries are never edited or removed.
type Member struct {
	ID         string `json:"id"`
	MemberName string `json:"memberName"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`

	MembershipType        string `json:"membershipType"`
	CurrentMembershipType string `json:"currentMembershipType,omitempty"`

	ApplicationStatus string `json:"applicationStatus"`
	DateOfSubmission  string `json:"dateOfSubmission,omitempty"` // ISO date
	ApprovedBy        string `json:"approvedBy,omitempty"`
	DateOfApproval    string `json:"dateOfApproval,omitempty"`
	RenewalDueOn      string `json:"renewalDueOn,omitempty"` // ISO date, empty for Life/Honorary

	Payments []Payment `json:"payments,omitempty"`

	// Profile fields, validated at submission time only.
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	Occupation       string `json:"occupation,omitempty"`
	BloodGroup       string `json:"bloodGroup,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	EmergencyPhone   string `json:"emergencyPhone,omitempty"`

	// WhatsApp group bookkeeping for the admin back office.
	WhatsAppGroups []string `json:"whatsAppGroups,omitempty"`
}

// IsValidMembershipType reports whether t is a known membership type.
func IsValidMembershipType(t string) bool {
	switch t {
	case TypeAnnual, TypeLife, TypeHonorary:
		return true
	}
	return false
}

// MemberIDPrefix returns the identifier namespace prefix for a membership type.
func MemberIDPrefix(membershipType string) (string, bool) {
	switch membershipType {
	case TypeAnnual:
		return "AM", true
	case TypeLife:
		return "LM", true
	case TypeHonorary:
		return "HM", true
	}
	return "", false
}
