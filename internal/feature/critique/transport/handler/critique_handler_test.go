package handler_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/critique/domain"
	"brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/critique/transport/handler"
	"brandai_backend/internal/feature/critique/usecase"
	"brandai_backend/internal/platform/media"
	"brandai_backend/internal/shared/llmerr"
)

// mockCritiqueService はCritiqueServiceインターフェースのモック実装です。
type mockCritiqueService struct {
	GetCritiqueFunc  func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error)
	GetCritiqueCalls int
}

func (m *mockCritiqueService) GetCritique(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error) {
	m.GetCritiqueCalls++
	return m.GetCritiqueFunc(ctx, payload, b, description)
}

type upload struct {
	name        string
	contentType string
	data        []byte
}

// createCritiqueRequest はテスト用のマルチパートリクエストを生成するヘルパー関数です。
func createCritiqueRequest(t *testing.T, fields map[string]string, file *upload) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/critique", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

var acmeFields = map[string]string{
	"name":                "Acme",
	"personality":         "Bold",
	"colors":              "Red, Black",
	"platform":            "TikTok",
	"competitors":         "Globex",
	"content_description": " A 10s product reveal ",
}

func TestCritiqueHandler_Critique(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		fields         map[string]string
		file           *upload
		mockFunc       func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error)
		expectedStatus int
		expectedBody   string
		expectedCalls  int
	}{
		{
			name:   "success",
			fields: acmeFields,
			file:   &upload{name: "ad.png", contentType: "image/png", data: []byte("png")},
			mockFunc: func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error) {
				if payload.MIMEType != "image/png" || b.Name != "Acme" || description != "A 10s product reveal" {
					return nil, errors.New("unexpected input")
				}
				return &entity.CritiqueResult{Verdict: entity.VerdictDeploy, OverallScore: 0.86}, nil
			},
			expectedStatus: http.StatusOK,
			expectedCalls:  1,
		},
		{
			name:   "error: no file is forwarded and rejected by validation",
			fields: acmeFields,
			mockFunc: func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error) {
				return nil, usecase.ValidateSubmission(payload, b, description)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Please upload an image or video file."}`,
			expectedCalls:  1,
		},
		{
			name:           "error: unsupported type",
			fields:         acmeFields,
			file:           &upload{name: "notes.txt", contentType: "text/plain", data: []byte("hello")},
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedBody:   `{"error":"Please upload an image or video file."}`,
		},
		{
			name:   "error: missing fields",
			fields: map[string]string{"name": "Acme"},
			file:   &upload{name: "ad.png", contentType: "image/png", data: []byte("png")},
			mockFunc: func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error) {
				return nil, domain.ErrMissingFields
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Please fill in Brand Name, Platform, and Content Description."}`,
			expectedCalls:  1,
		},
		{
			name:   "error: malformed model output",
			fields: acmeFields,
			file:   &upload{name: "ad.mp4", contentType: "video/mp4", data: []byte("mp4")},
			mockFunc: func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error) {
				return nil, domain.NewAnalysisError(llmerr.KindMalformedResponse, errors.New("eof"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"The AI returned an invalid response format."}`,
			expectedCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCritiqueService{GetCritiqueFunc: tt.mockFunc}
			h := handler.NewCritiqueHandler(svc, media.DefaultMaxBytes)

			router := gin.New()
			router.POST("/v1/critique", h.Critique)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, createCritiqueRequest(t, tt.fields, tt.file))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			assert.Equal(t, tt.expectedCalls, svc.GetCritiqueCalls)
		})
	}
}

func TestUploadErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, handler.UploadErrorStatus(media.ErrTooLarge))
	assert.Equal(t, http.StatusUnsupportedMediaType, handler.UploadErrorStatus(media.ErrUnsupportedType))
	assert.Equal(t, http.StatusBadRequest, handler.UploadErrorStatus(media.ErrEmpty))
	assert.Equal(t, http.StatusInternalServerError, handler.UploadErrorStatus(errors.New("disk")))
}
