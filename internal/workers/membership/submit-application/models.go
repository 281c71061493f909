// internal/workers/membership/submit-application/models.go
package submitapplication

type Input struct {
	UID            string                 `json:"uid"`
	MembershipType string                 `json:"membershipType"`
	Fields         map[string]interface{} `json:"fields"`
}

type Output struct {
	MemberID          string `json:"memberId"`
	ApplicationStatus string `json:"applicationStatus"`
	DateOfSubmission  string `json:"dateOfSubmission"` // ISO date
}
