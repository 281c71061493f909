// internal/workers/reporting/sync-member-report/models.go
package syncmemberreport

type Input struct {
	MemberID string `json:"memberId"`
}

type Output struct {
	MemberID string `json:"memberId"`
	Synced   bool   `json:"synced"`
	SyncedAt string `json:"syncedAt"` // RFC 3339
}
