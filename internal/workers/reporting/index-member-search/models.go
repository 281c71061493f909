// internal/workers/reporting/index-member-search/models.go
package indexmembersearch

type Input struct {
	MemberID string `json:"memberId"`
}

type Output struct {
	MemberID  string `json:"memberId"`
	Index     string `json:"index"`
	IndexedAt string `json:"indexedAt"` // RFC 3339
}

// memberDoc is the search projection; payment history stays out of the index.
type memberDoc struct {
	MemberID              string `json:"memberId"`
	MemberName            string `json:"memberName"`
	Email                 string `json:"email"`
	Mobile                string `json:"mobile"`
	City                  string `json:"city"`
	Occupation            string `json:"occupation,omitempty"`
	BloodGroup            string `json:"bloodGroup,omitempty"`
	MembershipType        string `json:"membershipType"`
	CurrentMembershipType string `json:"currentMembershipType,omitempty"`
	ApplicationStatus     string `json:"applicationStatus"`
	RenewalDueOn          string `json:"renewalDueOn,omitempty"`
}
