// internal/workers/membership/renewal-due-scan/models.go
package renewalduescan

type Input struct {
	// TriggeredBy records who or what started the scan (cron, admin UI).
	TriggeredBy string `json:"triggeredBy,omitempty"`
}

type Output struct {
	Scanned     int    `json:"scanned"`
	MarkedDue   int    `json:"markedDue"`
	AlreadyDue  int    `json:"alreadyDue"`
	CompletedAt string `json:"completedAt"` // RFC 3339
}
