package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_CreateSendsCanonicalPayload(t *testing.T) {
	id := uuid.New()
	var got domain.SaveQuotationRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/quotations", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, domain.IDResponse{ID: id})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", Credentials{APIKey: "secret", BearerToken: "ignored"}, zap.NewNop())

	doc := domain.NewDocument(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	doc.Title = "Roof"
	doc.CustomerName = "ACME"
	doc.Main[0] = domain.Item{Name: "Tile", Quantity: 2, UnitPrice: 100}
	doc.Tabs.Tabs = append(doc.Tabs.Tabs, domain.Tab{
		ID: "detail-1", Kind: domain.TabKindDetail, Label: "Extra", Print: true,
		Items: []domain.Item{{Name: "Nails", Quantity: 1, UnitPrice: 10}},
	})

	created, err := c.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, id, created)

	assert.Equal(t, "Roof", got.Title)
	assert.Equal(t, "2026-10-14", got.QuotationDate)
	assert.Equal(t, float64(210), got.TotalAmount)
	assert.Equal(t, float64(21), got.VAT)
	assert.Equal(t, float64(231), got.GrandTotal)
	assert.Contains(t, got.Memo, `"tabConfig"`)
	require.NotEmpty(t, got.Items)
	assert.Equal(t, "main", got.Items[0].Section)
}

func TestClient_GetRebuildsDocument(t *testing.T) {
	id := uuid.New()
	date := "2026-01-05"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, domain.QuotationDTO{
			ID:            id,
			Title:         "Old",
			CustomerName:  "Legacy Ltd",
			QuotationDate: &date,
			ImageLayout:   "/uploads/1_plan.png",
			Items: []domain.LineItemDTO{
				{Section: "main", Name: "A", Quantity: 1, UnitPrice: 5},
				{Section: "detail", Name: "B", Quantity: 2, UnitPrice: 3},
			},
			CreatedAt: "2026-01-05T10:00:00Z",
			UpdatedAt: "2026-01-06T10:00:00Z",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{BearerToken: "tok"}, zap.NewNop())
	doc, err := c.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, doc.ID)
	assert.Len(t, doc.Main, 1)
	assert.Len(t, doc.Detail, 1)
	require.Len(t, doc.Tabs.Tabs, 4)
	assert.Equal(t, "/uploads/1_plan.png", doc.Tabs.Tabs[0].ImageURL)
	assert.Equal(t, 2026, doc.CreatedAt.Year())
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusNotFound, domain.APIError{Type: domain.ErrorTypeNotFound, Title: "Not Found", Status: 404, Detail: "quotation not found"})
		case http.MethodPut:
			writeJSON(w, http.StatusBadRequest, domain.APIError{Type: domain.ErrorTypeValidation, Status: 400, Errors: map[string]string{"title": "This field is required"}})
		default:
			writeJSON(w, http.StatusInternalServerError, domain.APIError{Type: domain.ErrorTypeInternal, Title: "Internal Server Error", Status: 500, Detail: "failed to delete quotation: disk full"})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{}, zap.NewNop())
	ctx := context.Background()

	_, err := c.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, editor.ErrNotFound)

	err = c.Update(ctx, uuid.New(), &domain.Document{Tabs: domain.DefaultTabConfig()})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")

	err = c.Delete(ctx, uuid.New())
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Contains(t, err.Error(), "disk full")
}

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/uploads", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "pixels", string(data))
		assert.Equal(t, "site plan.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, domain.UploadResponse{Path: "/uploads/1_site_plan.png"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{}, zap.NewNop())
	path, err := c.Upload(context.Background(), "site plan.png", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1_site_plan.png", path)
}

func TestClient_Export(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/export"))
		w.Header().Set("Content-Disposition", `attachment; filename="Roof.xlsx"`)
		_, _ = w.Write([]byte("PK"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{}, zap.NewNop())
	data, name, err := c.Export(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data))
	assert.Equal(t, "Roof.xlsx", name)
}
