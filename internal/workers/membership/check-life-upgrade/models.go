// internal/workers/membership/check-life-upgrade/models.go
package checklifeupgrade

type Input struct {
	MemberID string `json:"memberId"`
}

type Output struct {
	MemberID         string `json:"memberId"`
	Eligible         bool   `json:"eligible"`
	DateOfSubmission string `json:"dateOfSubmission,omitempty"`
	EligibleFrom     string `json:"eligibleFrom,omitempty"` // ISO date
}
