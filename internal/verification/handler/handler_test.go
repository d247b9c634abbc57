package handler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriflow/internal/identity"
	"veriflow/internal/vault"
	"veriflow/internal/verification/handler"
	"veriflow/internal/verification/models"
	"veriflow/internal/verification/service"
	"veriflow/internal/verification/store"
	"veriflow/pkg/testutil"
)

type fixture struct {
	router   chi.Router
	svc      *service.Service
	verifier *identity.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	verifier := identity.NewVerifier("test-signing-key", "veriflow-test")

	evidenceVault, err := vault.New(t.TempDir(), logger)
	require.NoError(t, err)

	svc := service.New(store.NewMemoryRecordStore(), store.NewMemoryAppealStore(), evidenceVault,
		service.WithLogger(logger))

	h := handler.New(svc, evidenceVault, verifier, nil, logger, 200<<20)
	router := chi.NewRouter()
	h.Register(router)
	return &fixture{router: router, svc: svc, verifier: verifier}
}

func (f *fixture) token(t *testing.T, subjectID, role string) string {
	t.Helper()
	token, err := f.verifier.Mint(subjectID, subjectID+"@example.com", role, time.Minute)
	require.NoError(t, err)
	return token
}

type filePart struct {
	field, name, content string
}

func multipartRequest(t *testing.T, parts []filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/employee/verification/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validParts() []filePart {
	return []filePart{
		{"idDocument", "passport.pdf", "id document bytes"},
		{"proofOfResidence", "utility-bill.pdf", "proof bytes"},
		{"selfie", "selfie.jpg", "selfie bytes"},
	}
}

func (f *fixture) submit(t *testing.T, subjectID string) *models.Record {
	t.Helper()
	req := multipartRequest(t, validParts())
	req.Header.Set("Authorization", "Bearer "+f.token(t, subjectID, "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalResponse[models.Record](t, rr)
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	record := f.submit(t, "subject-1")
	assert.Equal(t, "subject-1", record.SubjectID)
	assert.Equal(t, models.StatusPending, record.Status)
	assert.Contains(t, record.Evidence.IDDocument, "/api/employee/verification/file/subject-1/")
	assert.Contains(t, record.Evidence.Selfie, "selfie.jpg")
}

func TestSubmit_RequiresAuth(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, multipartRequest(t, validParts()))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthenticated")
}

func TestSubmit_MissingFile(t *testing.T) {
	f := newFixture(t)

	req := multipartRequest(t, validParts()[:2])
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_upload")
}

func TestSubmit_DisallowedExtension(t *testing.T) {
	f := newFixture(t)

	parts := validParts()
	parts[0].name = "malware.exe"
	req := multipartRequest(t, parts)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_upload")
}

func TestSubmit_SecondPendingConflicts(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "subject-1")

	req := multipartRequest(t, validParts())
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestLatest(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewRequest(t, http.MethodGet, "/api/employee/verification")
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "hasVerification", false)

	f.submit(t, "subject-1")

	req = testutil.NewRequest(t, http.MethodGet, "/api/employee/verification")
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "hasVerification", true)
	testutil.AssertJSONHasKey(t, rr, "verification")
}

func TestAppeal(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, "subject-1")
	_, err := f.svc.ReviewVerification(context.Background(), "admin-1", record.ID, false, "too blurry")
	require.NoError(t, err)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/employee/verification/appeal",
		map[string]string{"message": "retaking the photo"})
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	appeal := testutil.UnmarshalResponse[models.Appeal](t, rr)
	assert.Equal(t, record.ID, appeal.VerificationID)
	assert.Equal(t, models.StatusPending, appeal.Status)
}

func TestAppeal_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/employee/verification/appeal",
		map[string]string{"message": "   "})
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestAppeal_PendingVerification(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "subject-1")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/employee/verification/appeal",
		map[string]string{"message": "please"})
	req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "invalid_state")
}

func TestFileRetrieval(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, "subject-1")
	path := record.Evidence.IDDocument

	t.Run("owner can read", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, path)
		req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		body, err := io.ReadAll(rr.Body)
		require.NoError(t, err)
		assert.Equal(t, "id document bytes", string(body))
	})

	t.Run("admin can read", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, path)
		req.Header.Set("Authorization", "Bearer "+f.token(t, "reviewer-1", identity.RoleAdmin))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, path)
		req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-2", "employee"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("missing file is not found", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/api/employee/verification/file/subject-1/nope.pdf")
		req.Header.Set("Authorization", "Bearer "+f.token(t, "subject-1", "employee"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
