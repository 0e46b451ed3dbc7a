package backend

import (
	"time"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// The backend has grown several generations of field names for the same
// data (stato/status/appointment_status, start/start_time, ...). All
// fallback reading happens here, through domain.CoalesceStr, and nowhere
// else.

type wireAppointment struct {
	ID        string `json:"id"`
	NotaryID  string `json:"notary_id"`
	ClientID  string `json:"client_id"`
	ActCode   string `json:"act_code"`
	Service   string `json:"service_code"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	StartTime string `json:"start_time"`
	End       string `json:"end"`
	EndTime   string `json:"end_time"`

	Stato             string `json:"stato"`
	Status            string `json:"status"`
	AppointmentStatus string `json:"appointment_status"`

	Modes     []string `json:"modes"`
	Notes     string   `json:"notes"`
	CreatedAt string   `json:"created_at"`

	ClientName  string `json:"client_name"`
	NotaryName  string `json:"notary_name"`
	ServiceName string `json:"service_name"`
}

func (w wireAppointment) toDomain() domain.Appointment {
	start := parseWireTime(w.Date, domain.CoalesceStr(w.Start, w.StartTime))
	end := parseWireTime(w.Date, domain.CoalesceStr(w.End, w.EndTime))
	modes := make([]domain.ServiceMode, 0, len(w.Modes))
	for _, m := range w.Modes {
		modes = append(modes, domain.ServiceMode(m))
	}
	return domain.Appointment{
		ID:          w.ID,
		NotaryID:    w.NotaryID,
		ClientID:    w.ClientID,
		ServiceCode: domain.CoalesceStr(w.ActCode, w.Service),
		Start:       start,
		End:         end,
		Status:      domain.NormalizeStatus(domain.CoalesceStr(w.Stato, w.Status, w.AppointmentStatus)),
		Modes:       modes,
		Notes:       w.Notes,
		CreatedAt:   parseWireTime("", w.CreatedAt),
		ClientName:  w.ClientName,
		NotaryName:  w.NotaryName,
		ServiceName: w.ServiceName,
	}
}

type wireSlot struct {
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	DurationMin int    `json:"duration"`
	IsAvailable bool   `json:"isAvailable"`
}

func (w wireSlot) toDomain() domain.Slot {
	start := parseWireTime(w.Date, w.Start)
	end := parseWireTime(w.Date, w.End)
	y, m, d := start.Date()
	return domain.Slot{
		Date:        time.Date(y, m, d, 0, 0, 0, 0, start.Location()),
		Start:       start,
		End:         end,
		DurationMin: w.DurationMin,
		Available:   w.IsAvailable,
	}
}

type wireServiceType struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	DurationMin int      `json:"duration_minutes"`
	Weekdays    []int    `json:"allowed_weekdays"`
	Bands       []string `json:"allowed_bands"`
}

func (w wireServiceType) toDomain() domain.ServiceType {
	st := domain.ServiceType{
		Code:        w.Code,
		Name:        w.Name,
		DurationMin: w.DurationMin,
	}
	for _, d := range w.Weekdays {
		st.AllowedWeekdays = append(st.AllowedWeekdays, time.Weekday(d))
	}
	for _, b := range w.Bands {
		switch b {
		case "morning":
			st.AllowedBands = append(st.AllowedBands, domain.BandMorning)
		case "afternoon":
			st.AllowedBands = append(st.AllowedBands, domain.BandAfternoon)
		case "evening":
			st.AllowedBands = append(st.AllowedBands, domain.BandEvening)
		}
	}
	return st
}

type wireNotification struct {
	ID            string `json:"id"`
	Tipo          string `json:"tipo"`
	Type          string `json:"type"`
	AppointmentID string `json:"appointment_id"`
	Read          bool   `json:"read"`
	CreatedAt     string `json:"created_at"`
	ClientName    string `json:"client_name"`
	ServiceName   string `json:"service_name"`
}

func (w wireNotification) toDomain() domain.Notification {
	return domain.Notification{
		ID:            w.ID,
		Type:          domain.NormalizeNotificationType(domain.CoalesceStr(w.Tipo, w.Type)),
		AppointmentID: w.AppointmentID,
		Read:          w.Read,
		CreatedAt:     parseWireTime("", w.CreatedAt),
		ClientName:    w.ClientName,
		ServiceName:   w.ServiceName,
	}
}

type wireDocument struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointment_id"`
	Name          string `json:"name"`
	Required      bool   `json:"required"`
	HasFile       bool   `json:"has_file"`
	Status        string `json:"status"`
	RejectionNote string `json:"rejection_note"`
}

func (w wireDocument) toDomain() domain.Document {
	status := domain.DocumentStatus(w.Status)
	if status == "" {
		status = domain.DocPending
	}
	return domain.Document{
		ID:            w.ID,
		AppointmentID: w.AppointmentID,
		Name:          w.Name,
		Required:      w.Required,
		HasFile:       w.HasFile,
		Status:        status,
		RejectionNote: w.RejectionNote,
	}
}

// parseWireTime parses the backend's time encodings: RFC3339 timestamps,
// or a separate date ("2006-01-02") plus clock ("15:04" / "15:04:05").
// Unparseable input yields the zero time.
func parseWireTime(date, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if clock, err := time.Parse(layout, value); err == nil {
			if date == "" {
				return time.Time{}
			}
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return time.Time{}
			}
			return time.Date(day.Year(), day.Month(), day.Day(),
				clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local)
		}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
}
