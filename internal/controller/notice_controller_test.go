package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"legal-aid-be/internal/dto"
	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/pkg/serverutils"
	"legal-aid-be/internal/service"
	"legal-aid-be/pkg/llm"
	"legal-aid-be/pkg/notice"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

// stubNoticeService overrides the calls under test; anything else panics
// through the nil embedded interface.
type stubNoticeService struct {
	service.INoticeService

	uploadErr   error
	classifyErr error
	gotUser     uuid.UUID
	gotFile     string
	gotText     string
	gotSize     int
	selection   *dto.SubmitSelectionRequest
}

func (s *stubNoticeService) Upload(_ context.Context, userId uuid.UUID, fileName, _ string, data []byte, noticeText string) (*dto.UploadNoticeResponse, error) {
	s.gotUser, s.gotFile, s.gotText, s.gotSize = userId, fileName, noticeText, len(data)
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &dto.UploadNoticeResponse{ActivityId: uuid.New(), FileName: fileName, PageCount: 1}, nil
}

func (s *stubNoticeService) Classify(context.Context, uuid.UUID) (*dto.DerivationResponse, error) {
	if s.classifyErr != nil {
		return nil, s.classifyErr
	}
	return &dto.DerivationResponse{IsSummon: true, Reasons: []string{"Unpaid rent"}}, nil
}

func (s *stubNoticeService) SubmitSelection(_ context.Context, _ uuid.UUID, req *dto.SubmitSelectionRequest) (*dto.CaseRecordResponse, error) {
	s.selection = req
	return &dto.CaseRecordResponse{Stage: string(notice.StageInputSubmitted)}, nil
}

func (s *stubNoticeService) ExportHistory(context.Context, uuid.UUID) ([]byte, error) {
	return []byte("xlsx"), nil
}

func newNoticeApp(svc service.INoticeService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	NewNoticeController(svc, serverutils.JwtMiddleware(testSecret)).RegisterRoutes(app.Group("/api"))
	return app
}

func bearer(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func uploadRequest(t *testing.T, withFile bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if withFile {
		part, err := w.CreateFormFile("file", "notice.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("notice_text", "Legal notice for unpaid dues"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/notice/v1/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func readEnvelope(t *testing.T, resp *http.Response) serverutils.BaseResponse[json.RawMessage] {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out serverutils.BaseResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestNoticeController_Upload(t *testing.T) {
	userId := uuid.New()

	tests := []struct {
		name     string
		withFile bool
		auth     bool
		svcErr   error
		want     int
	}{
		{name: "stores the notice", withFile: true, auth: true, want: http.StatusOK},
		{name: "missing file", withFile: false, auth: true, want: http.StatusBadRequest},
		{name: "no token", withFile: true, auth: false, want: http.StatusUnauthorized},
		{name: "storage outage", withFile: true, auth: true, svcErr: fmt.Errorf("put: %w", notice.ErrStorageWriteFailed), want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubNoticeService{uploadErr: tt.svcErr}
			req := uploadRequest(t, tt.withFile)
			if tt.auth {
				req.Header.Set("Authorization", bearer(t, userId))
			}

			resp, err := newNoticeApp(svc).Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			if tt.want == http.StatusOK {
				assert.Equal(t, userId, svc.gotUser)
				assert.Equal(t, "notice.pdf", svc.gotFile)
				assert.Equal(t, "Legal notice for unpaid dues", svc.gotText)
				assert.Equal(t, len("%PDF-1.4 test"), svc.gotSize)
				assert.True(t, readEnvelope(t, resp).Success)
			}
		})
	}
}

func TestNoticeController_ClassifyMapsUpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", want: http.StatusOK},
		{name: "ambiguous", err: notice.ErrClassificationAmbiguous, want: http.StatusUnprocessableEntity},
		{name: "provider timeout", err: fmt.Errorf("classify: %w", llm.ErrUpstreamTimeout), want: http.StatusGatewayTimeout},
		{name: "wrong stage", err: notice.ErrInvalidStage, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/notice/v1/classify", nil)
			req.Header.Set("Authorization", bearer(t, uuid.New()))

			resp, err := newNoticeApp(&stubNoticeService{classifyErr: tt.err}).Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, tt.err == nil, readEnvelope(t, resp).Success)
		})
	}
}

func TestNoticeController_SubmitSelectionValidatesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "indices", body: `{"indices":[0,2],"answers":{"2":"Paid in March"},"target_pages":2}`, want: http.StatusOK},
		{name: "negative index", body: `{"indices":[-1]}`, want: http.StatusBadRequest},
		{name: "not json", body: `indices=1`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubNoticeService{}
			req := httptest.NewRequest(http.MethodPost, "/api/notice/v1/selection", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", bearer(t, uuid.New()))

			resp, err := newNoticeApp(svc).Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			if tt.want == http.StatusOK {
				require.NotNil(t, svc.selection)
				assert.Equal(t, []int{0, 2}, svc.selection.Indices)
				assert.Equal(t, "Paid in March", svc.selection.Answers[2])
			}
		})
	}
}

func TestNoticeController_ExportIsNotShadowedByDetailRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/notice/v1/history/export", nil)
	req.Header.Set("Authorization", bearer(t, uuid.New()))

	resp, err := newNoticeApp(&stubNoticeService{}).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment;")
}
