package domain

import "time"

// Notification is the canonical client-side record for an inbound
// notification. Created server-side; the client may mark it read or delete
// it once reconciliation judges it obsolete, and treats it as immutable
// otherwise.
type Notification struct {
	ID            string
	Type          NotificationType
	AppointmentID string // optional link, empty when unlinked
	Read          bool
	CreatedAt     time.Time

	// Denormalized display fields.
	ClientName  string
	ServiceName string
}

// Document is a file attached (or required) for an appointment's service
// type. Required documents gate the documents-required notification's
// completion check.
type Document struct {
	ID            string
	AppointmentID string
	Name          string
	Required      bool
	HasFile       bool
	Status        DocumentStatus
	RejectionNote string
}

// RequiredDocumentsComplete reports whether every required document in docs
// has a file attached. An empty list counts as complete.
func RequiredDocumentsComplete(docs []Document) bool {
	for _, d := range docs {
		if d.Required && !d.HasFile {
			return false
		}
	}
	return true
}
