// internal/workers/membership/approve-application/models.go
package approveapplication

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type Input struct {
	MemberID   string `json:"memberId"`
	ApprovedBy string `json:"approvedBy"`
	Decision   string `json:"decision"` // approve | reject
}

type Output struct {
	MemberID          string `json:"memberId"`
	ApplicationStatus string `json:"applicationStatus"`
	DateOfApproval    string `json:"dateOfApproval"` // ISO date
}
