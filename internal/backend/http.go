package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

const wireDate = "2006-01-02"

// Config holds the HTTP client settings.
type Config struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// httpClient implements Client against the portal's REST backend.
type httpClient struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewHTTPClient creates a Client that talks to the booking backend.
func NewHTTPClient(cfg Config, log *zap.Logger) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		log: log,
	}
}

func (c *httpClient) GetAvailableSlots(ctx context.Context, q SlotQuery) ([]domain.Slot, error) {
	v := url.Values{}
	v.Set("notary_id", q.NotaryID)
	v.Set("start_date", q.StartDate.Format(wireDate))
	v.Set("end_date", q.EndDate.Format(wireDate))
	v.Set("duration_minutes", fmt.Sprint(q.DurationMin))
	if q.ExcludeAppointmentID != "" {
		v.Set("exclude_appointment_id", q.ExcludeAppointmentID)
	}

	var out []wireSlot
	if err := c.do(ctx, http.MethodGet, "/api/slots?"+v.Encode(), nil, &out); err != nil {
		return nil, err
	}
	slots := make([]domain.Slot, 0, len(out))
	for _, w := range out {
		slots = append(slots, w.toDomain())
	}
	return slots, nil
}

func (c *httpClient) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*domain.Appointment, error) {
	modes := make([]string, 0, len(req.Modes))
	for _, m := range req.Modes {
		modes = append(modes, string(m))
	}
	body := map[string]any{
		"notary_id":        req.NotaryID,
		"client_id":        req.ClientID,
		"act_code":         req.ServiceCode,
		"date":             req.Date.Format(wireDate),
		"start":            req.Start.Format(time.RFC3339),
		"end":              req.End.Format(time.RFC3339),
		"duration_minutes": req.DurationMin,
		"modes":            modes,
		"notes":            req.Notes,
	}
	var out wireAppointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", body, &out); err != nil {
		return nil, err
	}
	a := out.toDomain()
	return &a, nil
}

func (c *httpClient) ListAppointments(ctx context.Context, f AppointmentFilters) ([]domain.Appointment, error) {
	v := url.Values{}
	if f.NotaryID != "" {
		v.Set("notary_id", f.NotaryID)
	}
	if f.ClientID != "" {
		v.Set("client_id", f.ClientID)
	}
	if !f.From.IsZero() {
		v.Set("from", f.From.Format(wireDate))
	}
	if !f.To.IsZero() {
		v.Set("to", f.To.Format(wireDate))
	}
	var out []wireAppointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments?"+v.Encode(), nil, &out); err != nil {
		return nil, err
	}
	apps := make([]domain.Appointment, 0, len(out))
	for _, w := range out {
		apps = append(apps, w.toDomain())
	}
	return apps, nil
}

func (c *httpClient) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	var out wireAppointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments/"+id, nil, &out); err != nil {
		return nil, err
	}
	a := out.toDomain()
	return &a, nil
}

func (c *httpClient) UpdateAppointment(ctx context.Context, id string, req UpdateAppointmentRequest) (*domain.Appointment, error) {
	body := map[string]any{}
	if req.Start != nil {
		body["start"] = req.Start.Format(time.RFC3339)
	}
	if req.End != nil {
		body["end"] = req.End.Format(time.RFC3339)
	}
	if req.Notes != nil {
		body["notes"] = *req.Notes
	}
	var out wireAppointment
	if err := c.do(ctx, http.MethodPatch, "/api/appointments/"+id, body, &out); err != nil {
		return nil, err
	}
	a := out.toDomain()
	return &a, nil
}

func (c *httpClient) ConfirmAppointment(ctx context.Context, id, note string) error {
	return c.do(ctx, http.MethodPost, "/api/appointments/"+id+"/confirm", map[string]any{"note": note}, nil)
}

func (c *httpClient) RejectAppointment(ctx context.Context, id, reason string) error {
	return c.do(ctx, http.MethodPost, "/api/appointments/"+id+"/reject", map[string]any{"reason": reason}, nil)
}

func (c *httpClient) CancelAppointment(ctx context.Context, id, reason string) error {
	return c.do(ctx, http.MethodPost, "/api/appointments/"+id+"/cancel", map[string]any{"reason": reason}, nil)
}

func (c *httpClient) DeleteAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/appointments/"+id, nil, nil)
}

func (c *httpClient) ListServiceTypes(ctx context.Context) ([]domain.ServiceType, error) {
	var out []wireServiceType
	if err := c.do(ctx, http.MethodGet, "/api/act-categories", nil, &out); err != nil {
		return nil, err
	}
	types := make([]domain.ServiceType, 0, len(out))
	for _, w := range out {
		types = append(types, w.toDomain())
	}
	return types, nil
}

func (c *httpClient) ListDocuments(ctx context.Context, appointmentID string) ([]domain.Document, error) {
	var out []wireDocument
	if err := c.do(ctx, http.MethodGet, "/api/appointments/"+appointmentID+"/documents", nil, &out); err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(out))
	for _, w := range out {
		docs = append(docs, w.toDomain())
	}
	return docs, nil
}

func (c *httpClient) UploadDocument(ctx context.Context, documentID, filename string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/documents/"+documentID+"/upload", &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, nil)
}

func (c *httpClient) VerifyDocument(ctx context.Context, documentID string, action VerifyAction, rejectionNote string) error {
	body := map[string]any{"action": string(action)}
	if rejectionNote != "" {
		body["rejection_note"] = rejectionNote
	}
	return c.do(ctx, http.MethodPost, "/api/documents/"+documentID+"/verify", body, nil)
}

func (c *httpClient) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var out []wireNotification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &out); err != nil {
		return nil, err
	}
	notifs := make([]domain.Notification, 0, len(out))
	for _, w := range out {
		notifs = append(notifs, w.toDomain())
	}
	return notifs, nil
}

func (c *httpClient) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/"+id+"/read", nil, nil)
}

func (c *httpClient) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil)
}

// DeleteNotification removes a notification. A concurrent reconciliation
// pass may have deleted it already; the duplicate delete is a no-op.
func (c *httpClient) DeleteNotification(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/notifications/"+id, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// do issues a JSON request and decodes the response into out (if non-nil).
func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *httpClient) send(req *http.Request, out any) error {
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return ErrTimeout
		}
		var netErr *net.OpError
		if errors.As(err, &netErr) {
			return ErrUnavailable
		}
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	c.log.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrAlreadyHandled
	case resp.StatusCode >= 300:
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
