package domain

import "strings"

// AppointmentStatus is the canonical appointment lifecycle status.
// Backend payloads arrive with mixed casing and separators; everything is
// normalized to this closed set at the decoding boundary and all internal
// comparisons operate on these values only.
type AppointmentStatus string

const (
	StatusProvisional        AppointmentStatus = "PROVISIONAL"
	StatusConfirmed          AppointmentStatus = "CONFIRMED"
	StatusRejected           AppointmentStatus = "REJECTED"
	StatusCancelled          AppointmentStatus = "CANCELLED"
	StatusDocumentsUploading AppointmentStatus = "DOCUMENTS_UPLOADING"
	StatusDocumentsVerifying AppointmentStatus = "DOCUMENTS_VERIFYING"
	StatusDocumentsPartial   AppointmentStatus = "DOCUMENTS_PARTIAL"
	StatusDocumentsVerified  AppointmentStatus = "DOCUMENTS_VERIFIED"
	StatusReady              AppointmentStatus = "READY"
	StatusInProgress         AppointmentStatus = "IN_PROGRESS"
	StatusCompleted          AppointmentStatus = "COMPLETED"
	StatusUnknown            AppointmentStatus = "UNKNOWN"
)

var validStatuses = map[AppointmentStatus]bool{
	StatusProvisional:        true,
	StatusConfirmed:          true,
	StatusRejected:           true,
	StatusCancelled:          true,
	StatusDocumentsUploading: true,
	StatusDocumentsVerifying: true,
	StatusDocumentsPartial:   true,
	StatusDocumentsVerified:  true,
	StatusReady:              true,
	StatusInProgress:         true,
	StatusCompleted:          true,
}

// NormalizeStatus maps a raw backend status string to the canonical
// enumeration. Casing, dashes and spaces are tolerated; anything outside
// the closed set maps to StatusUnknown.
func NormalizeStatus(raw string) AppointmentStatus {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	st := AppointmentStatus(s)
	if validStatuses[st] {
		return st
	}
	return StatusUnknown
}

// NotaryActedStatuses are the statuses in which the notary has already acted
// on a request, making an "appointment requested" notification obsolete.
var NotaryActedStatuses = map[AppointmentStatus]bool{
	StatusConfirmed:          true,
	StatusDocumentsUploading: true,
	StatusRejected:           true,
	StatusCancelled:          true,
}

// NotificationType is the canonical notification kind.
type NotificationType string

const (
	NotifAppointmentRequested NotificationType = "appointment_requested"
	NotifAppointmentConfirmed NotificationType = "appointment_confirmed"
	NotifDocumentUploaded     NotificationType = "document_uploaded"
	NotifDocumentApproved     NotificationType = "document_approved"
	NotifDocumentRejected     NotificationType = "document_rejected"
	NotifDocumentsRequired    NotificationType = "documents_required"
	NotifUnknown              NotificationType = "unknown"
)

var validNotificationTypes = map[NotificationType]bool{
	NotifAppointmentRequested: true,
	NotifAppointmentConfirmed: true,
	NotifDocumentUploaded:     true,
	NotifDocumentApproved:     true,
	NotifDocumentRejected:     true,
	NotifDocumentsRequired:    true,
}

// NormalizeNotificationType maps a raw backend type string to the canonical
// enumeration, tolerating casing and separator variants.
func NormalizeNotificationType(raw string) NotificationType {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	nt := NotificationType(s)
	if validNotificationTypes[nt] {
		return nt
	}
	return NotifUnknown
}

// ServiceMode is a non-exclusive delivery mode for a notarial service.
type ServiceMode string

const (
	ModeInPerson         ServiceMode = "in_person"
	ModeVideo            ServiceMode = "video"
	ModePhone            ServiceMode = "phone"
	ModeDigitalSignature ServiceMode = "digital_signature"
	ModeConservation     ServiceMode = "conservation"
	ModeSharedFolder     ServiceMode = "shared_folder"
)

// AllServiceModes lists every selectable mode in display order.
var AllServiceModes = []ServiceMode{
	ModeInPerson,
	ModeVideo,
	ModePhone,
	ModeDigitalSignature,
	ModeConservation,
	ModeSharedFolder,
}

// Role identifies which side of the portal this process runs as.
type Role string

const (
	RoleClient Role = "client"
	RoleNotary Role = "notary"
)

// DocumentStatus is the verification state of an uploaded document.
type DocumentStatus string

const (
	DocPending  DocumentStatus = "PENDING"
	DocApproved DocumentStatus = "APPROVED"
	DocRejected DocumentStatus = "REJECTED"
)
