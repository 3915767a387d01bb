package marketplace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"

	"github.com/Apurer/provider-onboarding/internal/shared/remote"
)

const maxResponseBytes = 1 << 20

// Client calls the marketplace REST backend. Every call returns a remote.Outcome: a
// transport error or an error status is Failed, a 2xx whose body cannot be interpreted
// is Ambiguous.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (timeouts, transports, test doubles).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// NewClient instantiates the client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("marketplace base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse marketplace base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("marketplace base URL %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:   parsed,
		http:      &http.Client{Timeout: 10 * time.Second},
		userAgent: "provider-onboarding",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// RegisterProvider submits the registration form with its four documents.
func (c *Client) RegisterProvider(ctx context.Context, form ProviderRegistration) remote.Outcome[ProviderResponse] {
	body, contentType, err := encodeRegistration(form)
	if err != nil {
		return remote.Failed[ProviderResponse](err.Error(), 0)
	}
	req, err := c.newRequest(ctx, http.MethodPost, body, contentType, "providers")
	if err != nil {
		return remote.Failed[ProviderResponse](err.Error(), 0)
	}
	return perform(c, req, (*ProviderResponse).validate)
}

// RegisterCategories registers category ids for a provider.
func (c *Client) RegisterCategories(ctx context.Context, providerID int64, categoryIDs []int64) remote.Outcome[CategoryResponse] {
	req, err := c.newJSONRequest(ctx, http.MethodPost, CategoryRequest{CategoryIDs: categoryIDs}, "providers", pathParam("providerId", providerID), "categories")
	if err != nil {
		return remote.Failed[CategoryResponse](err.Error(), 0)
	}
	return perform(c, req, (*CategoryResponse).validate)
}

// CreateService creates a service under a provider.
func (c *Client) CreateService(ctx context.Context, providerID int64, payload ServiceRequest) remote.Outcome[ServiceResponse] {
	req, err := c.newJSONRequest(ctx, http.MethodPost, payload, "providers", pathParam("providerId", providerID), "services")
	if err != nil {
		return remote.Failed[ServiceResponse](err.Error(), 0)
	}
	return perform(c, req, (*ServiceResponse).validate)
}

// UploadServicePhotos uploads photos in order as repeated "photos" parts.
func (c *Client) UploadServicePhotos(ctx context.Context, serviceID int64, photos []PhotoUpload) remote.Outcome[PhotoUploadResponse] {
	body, contentType, err := encodePhotos(photos)
	if err != nil {
		return remote.Failed[PhotoUploadResponse](err.Error(), 0)
	}
	req, err := c.newRequest(ctx, http.MethodPost, body, contentType, "services", pathParam("serviceId", serviceID), "photos")
	if err != nil {
		return remote.Failed[PhotoUploadResponse](err.Error(), 0)
	}
	return perform(c, req, (*PhotoUploadResponse).validate)
}

// CreateServiceSchedules creates weekly availability windows for a service.
func (c *Client) CreateServiceSchedules(ctx context.Context, serviceID int64, slots []ScheduleSlot) remote.Outcome[ScheduleResponse] {
	req, err := c.newJSONRequest(ctx, http.MethodPost, ScheduleRequest{Schedules: slots}, "services", pathParam("serviceId", serviceID), "schedules")
	if err != nil {
		return remote.Failed[ScheduleResponse](err.Error(), 0)
	}
	return perform(c, req, (*ScheduleResponse).validate)
}

// EstablishSession opens an authenticated session for a provider.
func (c *Client) EstablishSession(ctx context.Context, payload SessionRequest) remote.Outcome[SessionResponse] {
	req, err := c.newJSONRequest(ctx, http.MethodPost, payload, "sessions")
	if err != nil {
		return remote.Failed[SessionResponse](err.Error(), 0)
	}
	return perform(c, req, (*SessionResponse).validate)
}

// perform is the single place that turns an HTTP exchange into a tagged outcome.
func perform[T any](c *Client, req *http.Request, check func(*T) error) remote.Outcome[T] {
	if c == nil || c.http == nil {
		return remote.Failed[T]("marketplace client not configured", 0)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return remote.Failed[T](fmt.Sprintf("call marketplace API: %v", err), 0)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	status := resp.StatusCode
	switch {
	case status >= http.StatusBadRequest:
		return remote.Failed[T](errorMessage(body, resp.Status), status)
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return remote.Failed[T](fmt.Sprintf("marketplace API unexpected status: %s", resp.Status), status)
	}

	var out T
	if readErr != nil {
		return remote.Ambiguous(out, fmt.Sprintf("read response body: %v", readErr), status)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return remote.Ambiguous(out, fmt.Sprintf("decode response body: %v", err), status)
	}
	if check != nil {
		if err := check(&out); err != nil {
			return remote.Ambiguous(out, err.Error(), status)
		}
	}
	return remote.Confirmed(out)
}

func errorMessage(body []byte, fallback string) string {
	var problem Problem
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &problem) == nil {
		for _, candidate := range []string{problem.Detail, problem.Title, problem.Message} {
			if msg := strings.TrimSpace(candidate); msg != "" {
				return msg
			}
		}
	}
	return fallback
}

type pathSegment struct {
	name  string
	value any
}

func pathParam(name string, value any) pathSegment {
	return pathSegment{name: name, value: value}
}

func (c *Client) endpoint(segments ...any) (string, error) {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch s := seg.(type) {
		case string:
			parts = append(parts, s)
		case pathSegment:
			styled, err := runtime.StyleParamWithLocation("simple", false, s.name, runtime.ParamLocationPath, s.value)
			if err != nil {
				return "", fmt.Errorf("style path parameter %s: %w", s.name, err)
			}
			parts = append(parts, styled)
		default:
			return "", fmt.Errorf("unsupported path segment %T", seg)
		}
	}
	return c.baseURL.String() + "/" + strings.Join(parts, "/"), nil
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader, contentType string, segments ...any) (*http.Request, error) {
	target, err := c.endpoint(segments...)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build marketplace request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method string, payload any, segments ...any) (*http.Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode marketplace request: %w", err)
	}
	return c.newRequest(ctx, method, bytes.NewReader(raw), "application/json", segments...)
}

func encodeRegistration(form ProviderRegistration) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"fullName", form.FullName},
		{"businessName", form.BusinessName},
		{"email", form.Email},
		{"phone", form.Phone},
		{"password", form.Password},
		{"address", form.Address},
		{"description", form.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", f.name, err)
		}
	}
	for _, doc := range form.Documents {
		if err := writeFilePart(w, doc.Field, doc.Filename, doc.ContentType, doc.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func encodePhotos(photos []PhotoUpload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range photos {
		if err := writeFilePart(w, "photos", p.Filename, p.ContentType, p.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(w *multipart.Writer, field, filename, contentType string, data []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file %s: %w", field, err)
	}
	return nil
}
