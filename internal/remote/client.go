// Package remote is the HTTP client for the recognition backend: list, register,
// update, delete and analyze.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Operation names used for spans, metrics and errors.
const (
	OpListProfiles    = "list_profiles"
	OpAnalyzePhoto    = "analyze_photo"
	OpRegisterProfile = "register_profile"
	OpUpdateProfile   = "update_profile"
	OpDeleteProfile   = "delete_profile"
)

const (
	defaultFilename  = "photo.jpg"
	defaultPhotoType = "image/jpeg"
	photoField       = "photo"
)

// Client talks to the recognition backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. It applies on top of any client given
// with WithHTTPClient, which itself is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock sets the time source used for upload filenames.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProfiles fetches every registered profile in server order.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/profiles", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(ctx, OpListProfiles, req)
	if err != nil {
		return nil, err
	}

	var profiles []domain.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, &TransportError{Op: OpListProfiles, Err: fmt.Errorf("decode response: %w", err)}
	}
	return profiles, nil
}

// AnalyzePhoto uploads img and returns the backend's match result.
func (c *Client) AnalyzePhoto(ctx context.Context, img domain.Image) (*domain.AnalysisResult, error) {
	req, err := c.newMultipartRequest(ctx, "/analyze", img, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, OpAnalyzePhoto, req)
	if err != nil {
		return nil, err
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Op: OpAnalyzePhoto, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &result, nil
}

type registerResponse struct {
	Success bool           `json:"success"`
	ID      string         `json:"id"`
	Data    domain.Profile `json:"data"`
}

// RegisterProfile uploads img with the form fields and returns the created profile.
func (c *Client) RegisterProfile(ctx context.Context, fields domain.ProfileFields, img domain.Image) (*domain.Profile, error) {
	form := [][2]string{
		{domain.FieldNombre, fields.Nombre},
		{domain.FieldApellidos, fields.Apellidos},
		{domain.FieldCodigoEstudiante, fields.CodigoEstudiante},
		{domain.FieldCorreo, fields.Correo},
		{"requisitoriado", strconv.FormatBool(fields.Requisitoriado)},
	}
	req, err := c.newMultipartRequest(ctx, "/register", img, form)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, OpRegisterProfile, req)
	if err != nil {
		return nil, err
	}

	var resp registerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: OpRegisterProfile, Err: fmt.Errorf("decode response: %w", err)}
	}
	profile := resp.Data
	if profile.ID == "" {
		profile.ID = resp.ID
	}
	return &profile, nil
}

// UpdateProfile replaces the editable fields of profile id.
func (c *Client) UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.profileURL(id), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(ctx, OpUpdateProfile, req)
	return err
}

// DeleteProfile removes profile id.
func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.profileURL(id), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	_, err = c.do(ctx, OpDeleteProfile, req)
	return err
}

func (c *Client) profileURL(id string) string {
	return c.baseURL + "/profiles/" + url.PathEscape(id)
}

// UniqueFilename prefixes the base name of uri with the unix-millisecond timestamp so
// repeated uploads of the same file never share a name.
func UniqueFilename(now time.Time, uri string) string {
	name := defaultFilename
	p := uri
	if local, err := domain.LocalPath(uri); err == nil {
		p = filepath.ToSlash(local)
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if p != "" {
		name = p
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

// newMultipartRequest builds a multipart POST with the photo part followed by fields.
func (c *Client) newMultipartRequest(ctx context.Context, endpoint string, img domain.Image, fields [][2]string) (*http.Request, error) {
	photo, err := readImage(img.URI)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := img.MimeType
	if contentType == "" {
		contentType = defaultPhotoType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, photoField, UniqueFilename(c.now(), img.URI)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return nil, fmt.Errorf("write photo part: %w", err)
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

// readImage loads a local image from a file:// URI or a plain path.
func readImage(uri string) ([]byte, error) {
	p, err := domain.LocalPath(uri)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// do sends req once and returns the body of a 2xx response. Any other status becomes
// a ServerError; network and read failures become a TransportError.
func (c *Client) do(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	ctx, span := middleware.StartSpan(ctx, "remote."+op, trace.WithAttributes(
		attribute.String("layer", "remote"),
		attribute.String("http.method", req.Method),
		attribute.String("url.path", path.Clean(req.URL.Path)),
	), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	middleware.InjectTraceContext(ctx, req.Header)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.ObserveClientRequest(op, 0, time.Since(start))
		span.RecordError(err)
		c.logger.Warn("Backend request failed",
			zap.String("operation", op),
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	middleware.ObserveClientRequest(op, resp.StatusCode, duration)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("Backend request",
		zap.String("operation", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &ServerError{Op: op, Status: resp.StatusCode, Message: errorMessage(body)}
		span.RecordError(serr)
		return nil, serr
	}
	return body, nil
}

// errorMessage extracts the "error" field of a JSON error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
