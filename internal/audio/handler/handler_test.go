package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"voicerly_backend/internal/audio/service"
	"voicerly_backend/internal/audio/transport"
	"voicerly_backend/platform/apperr"
	"voicerly_backend/platform/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	admitReq    service.UploadRequest
	admitErr    error
	deletedURL  string
	lookupID    string
	downloadErr error
}

func (f *fakeService) Admit(_ context.Context, req service.UploadRequest) (transport.UploadResponse, error) {
	f.admitReq = req
	if f.admitErr != nil {
		return transport.UploadResponse{}, f.admitErr
	}
	return transport.UploadResponse{URL: "http://localhost:3000/share/abc", ID: "abc"}, nil
}

func (f *fakeService) Delete(_ context.Context, shareURL string) (transport.DeleteResponse, error) {
	f.deletedURL = shareURL
	return transport.DeleteResponse{Success: true, Message: "Audio file deleted successfully"}, nil
}

func (f *fakeService) Lookup(_ context.Context, id, _ string) (transport.AudioFileResponse, error) {
	f.lookupID = id
	return transport.AudioFileResponse{ID: id}, nil
}

func (f *fakeService) RecordDownload(_ context.Context, id string) (transport.DownloadResponse, error) {
	if f.downloadErr != nil {
		return transport.DownloadResponse{}, f.downloadErr
	}
	return transport.DownloadResponse{DownloadCount: 1, FileName: "recording-" + id + ".webm"}, nil
}

func (f *fakeService) Stats(context.Context) (transport.FileStatsResponse, error) {
	return transport.FileStatsResponse{TotalFiles: 2, TotalSizeMB: "0.00", OldFilesSizeMB: "0.00"}, nil
}

func (f *fakeService) Cleanup(context.Context) transport.CleanupResponse {
	return transport.CleanupResponse{Success: true}
}

func newEngine(svc AudioService) *gin.Engine {
	h := New(svc, validator.New(), 16)
	engine := gin.New()
	v1 := engine.Group("/api/v1")
	h.RegisterRoutes(v1)
	h.RegisterMaintenanceRoutes(v1)
	return engine
}

func multipartBody(t *testing.T, field, fileName, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("note", "ignored"); err != nil {
		t.Fatal(err)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadPassesPartToService(t *testing.T) {
	svc := &fakeService{}
	body, contentType := multipartBody(t, AudioFormField, "clip.webm", "audio/webm;codecs=opus", []byte("0123456789"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	newEngine(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := svc.admitReq
	if !got.HasFile || got.FileName != "clip.webm" || got.MimeType != "audio/webm;codecs=opus" {
		t.Errorf("request = %+v", got)
	}
	if string(got.Payload) != "0123456789" || got.Origin != "https://app.example" {
		t.Errorf("payload/origin = %q/%q", got.Payload, got.Origin)
	}

	var resp transport.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "abc" {
		t.Errorf("ID = %q", resp.ID)
	}
}

func TestUploadBuffersOneByteOverLimit(t *testing.T) {
	svc := &fakeService{}
	body, contentType := multipartBody(t, AudioFormField, "clip.webm", "audio/webm", bytes.Repeat([]byte{1}, 64))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	newEngine(svc).ServeHTTP(httptest.NewRecorder(), req)

	if len(svc.admitReq.Payload) != 17 {
		t.Errorf("buffered %d bytes, want 17", len(svc.admitReq.Payload))
	}
}

func TestUploadWithoutAudioField(t *testing.T) {
	cases := []struct {
		name string
		body func(t *testing.T) (*bytes.Buffer, string)
	}{
		{"other field", func(t *testing.T) (*bytes.Buffer, string) {
			return multipartBody(t, "file", "clip.webm", "audio/webm", []byte("x"))
		}},
		{"not multipart", func(*testing.T) (*bytes.Buffer, string) {
			return bytes.NewBufferString(`{"audio":"x"}`), "application/json"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{admitErr: apperr.BadRequest("No audio file provided")}
			body, contentType := tc.body(t)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			newEngine(svc).ServeHTTP(rec, req)

			if svc.admitReq.HasFile {
				t.Error("HasFile should be false")
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestUploadRateLimited(t *testing.T) {
	svc := &fakeService{admitErr: apperr.RateLimited("Rate limit exceeded. Maximum 10 uploads per hour.").
		WithDetails(apperr.RetryAfter{Seconds: 120})}
	body, contentType := multipartBody(t, AudioFormField, "clip.webm", "audio/webm", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newEngine(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "120" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if !strings.Contains(rec.Body.String(), "Maximum 10 uploads per hour") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDelete(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"url":"https://voicerly.example/share/abc"}`, http.StatusOK},
		{"blank url", `{"url":"  "}`, http.StatusBadRequest},
		{"missing url", `{}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"too long", `{"url":"` + strings.Repeat("a", 2049) + `"}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/delete", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newEngine(svc).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status == http.StatusOK && svc.deletedURL != "https://voicerly.example/share/abc" {
				t.Errorf("deleted url = %q", svc.deletedURL)
			}
		})
	}
}

func TestGetValidatesID(t *testing.T) {
	svc := &fakeService{}
	engine := newEngine(svc)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audio/abc_-1", nil))
	if rec.Code != http.StatusOK || svc.lookupID != "abc_-1" {
		t.Errorf("valid id: code %d, lookup %q", rec.Code, svc.lookupID)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audio/abcdefghijk", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("long id: expected 400, got %d", rec.Code)
	}
}

func TestDownloadNotFound(t *testing.T) {
	svc := &fakeService{downloadErr: apperr.NotFound("Audio file not found")}
	rec := httptest.NewRecorder()
	newEngine(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/audio/abc/download", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestMaintenanceRoutes(t *testing.T) {
	engine := newEngine(&fakeService{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cleanup", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"totalFiles":2`) {
		t.Errorf("stats: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cleanup", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("cleanup: %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadTruncatedBodyStillRateLimited(t *testing.T) {
	svc := &fakeService{admitErr: apperr.RateLimited("Rate limit exceeded. Maximum 10 uploads per hour.")}

	body := "--b\r\n" +
		"Content-Disposition: form-data; name=\"audio\"; filename=\"clip.webm\"\r\n" +
		"Content-Type: audio/webm\r\n\r\n" +
		"0123"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	rec := httptest.NewRecorder()
	newEngine(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.admitReq.HasFile {
		t.Error("unreadable part should be reported as no file")
	}
}
