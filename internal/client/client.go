// Package client talks to the quotation API over HTTP. Client implements
// editor.Backend and editor.FileStore so an editor session can run remotely.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/editor"
	"github.com/straye-as/quotation-api/internal/mapper"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client is an authenticated HTTP client for the /api/v1 routes
type Client struct {
	baseURL     string
	httpClient  *http.Client
	apiKey      string
	bearerToken string
	logger      *zap.Logger
}

// Credentials select how requests authenticate. APIKey wins when both are set.
type Credentials struct {
	APIKey      string
	BearerToken string
}

// NewClient creates a client for the API served at baseURL (scheme and host, no /api/v1)
func NewClient(baseURL string, creds Credentials, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		apiKey:      creds.APIKey,
		bearerToken: creds.BearerToken,
		logger:      logger,
	}
}

// Create posts doc as a new quotation
func (c *Client) Create(ctx context.Context, doc *domain.Document) (uuid.UUID, error) {
	req, err := mapper.ToSaveRequest(doc)
	if err != nil {
		return uuid.Nil, err
	}
	var resp domain.IDResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/quotations", req, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

// Update replaces quotation id with doc
func (c *Client) Update(ctx context.Context, id uuid.UUID, doc *domain.Document) error {
	req, err := mapper.ToSaveRequest(doc)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, "/api/v1/quotations/"+id.String(), req, &domain.SuccessResponse{})
}

// Get fetches quotation id as a document
func (c *Client) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var dto domain.QuotationDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/quotations/"+id.String(), nil, &dto); err != nil {
		return nil, err
	}
	return mapper.DocumentFromDTO(&dto)
}

// Delete removes quotation id
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/quotations/"+id.String(), nil, &domain.SuccessResponse{})
}

// List returns every quotation summary, newest first
func (c *Client) List(ctx context.Context) ([]domain.QuotationSummaryDTO, error) {
	var out []domain.QuotationSummaryDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/quotations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CopyQuotation asks the server to duplicate quotation id
func (c *Client) CopyQuotation(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var resp domain.IDResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/quotations/"+id.String()+"/copy", nil, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

// Export downloads the xlsx rendering of quotation id and its suggested filename
func (c *Client) Export(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/quotations/"+id.String()+"/export", nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read export: %w", err)
	}
	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return data, filename, nil
}

// Upload sends data as the multipart field "file" and returns the stored path
func (c *Client) Upload(ctx context.Context, filename, contentType string, data io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": filename}))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/uploads", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out domain.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	return out.Path, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case c.apiKey != "":
		req.Header.Set("x-api-key", c.apiKey)
	case c.bearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	return req, nil
}

// send executes req and converts non-2xx responses into errors
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

// decodeError maps a problem body onto the errors callers match on
func decodeError(resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(data, apiErr)
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", editor.ErrNotFound, apiErr.Error())
	case http.StatusBadRequest:
		if len(apiErr.Errors) > 0 {
			return &domain.ValidationError{Fields: apiErr.Errors}
		}
	}
	return apiErr
}

// IsStatus reports whether err is an API error with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

var (
	_ editor.Backend   = (*Client)(nil)
	_ editor.FileStore = (*Client)(nil)
)
