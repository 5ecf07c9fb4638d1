package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/landing-sop/contact-api/internal/submission"
)

func newTestHandler(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&submission.Record{}, &submission.SuspiciousActivity{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	service, err := submission.NewService(submission.ServiceConfig{
		Database:   db,
		IDProvider: submission.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		Submissions: service,
		Clock:       func() time.Time { return time.Unix(1770000000, 0).UTC() },
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler, db
}

func postJSON(t *testing.T, handler http.Handler, body string) submitResponse {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var response submitResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestSubmitEndpointAcceptsValidSubmission(t *testing.T) {
	handler, db := newTestHandler(t)

	response := postJSON(t, handler, `{"name":"Jane","email":"jane@x.com","message":"Hello","website":""}`)
	if !response.Success {
		t.Fatalf("expected success, got error %q", response.Error)
	}

	var count int64
	if err := db.Model(&submission.Record{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count submissions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored row, got %d", count)
	}
}

func TestSubmitEndpointRejectsInvalidEmailWithRussianMessage(t *testing.T) {
	handler, db := newTestHandler(t)

	response := postJSON(t, handler, `{"name":"Jane","email":"not-an-email","message":"Hello"}`)
	if response.Success {
		t.Fatalf("expected rejection")
	}
	if response.Error != "Неверный формат email" {
		t.Fatalf("unexpected error message: %q", response.Error)
	}

	var count int64
	if err := db.Model(&submission.Record{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count submissions: %v", err)
	}
	if count != 0 {
		t.Fatalf("store should be unchanged, got %d rows", count)
	}
}

func TestSubmitEndpointRejectsMissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	response := postJSON(t, handler, `{"email":"jane@x.com","message":"Hello"}`)
	if response.Success {
		t.Fatalf("expected rejection")
	}
	if response.Error != "Отсутствуют обязательные поля" {
		t.Fatalf("unexpected error message: %q", response.Error)
	}
}

func TestSubmitEndpointRejectsHoneypotGenerically(t *testing.T) {
	handler, db := newTestHandler(t)

	response := postJSON(t, handler, `{"name":"Bot","email":"bot@spam.example","message":"hi","website":"spam"}`)
	if response.Success {
		t.Fatalf("expected rejection")
	}
	if response.Error != "Bot detected" {
		t.Fatalf("honeypot rejection must stay generic, got %q", response.Error)
	}

	var suspicious int64
	if err := db.Model(&submission.SuspiciousActivity{}).Count(&suspicious).Error; err != nil {
		t.Fatalf("failed to count suspicious activity: %v", err)
	}
	if suspicious != 1 {
		t.Fatalf("expected one suspicious-activity row, got %d", suspicious)
	}
}

func TestSubmitEndpointRejectsWrongContentType(t *testing.T) {
	handler, _ := newTestHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Jane"))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("rejections ride on 200, got %d", recorder.Code)
	}
	var response submitResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Success || response.Error != "Invalid content type" {
		t.Fatalf("unexpected response: %+v", response)
	}
}

func TestSubmitEndpointRejectsMalformedJSON(t *testing.T) {
	handler, _ := newTestHandler(t)

	response := postJSON(t, handler, `{"name":`)
	if response.Success {
		t.Fatalf("expected rejection for malformed body")
	}
	if !strings.HasPrefix(response.Error, "Ошибка сервера") {
		t.Fatalf("unexpected error message: %q", response.Error)
	}
}

func TestHealthEndpointReportsWorking(t *testing.T) {
	handler, _ := newTestHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "working" {
		t.Fatalf("unexpected status field: %q", body["status"])
	}
	if body["timestamp"] == "" || body["message"] == "" {
		t.Fatalf("expected timestamp and message fields, got %v", body)
	}
}
