package server

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"compliancehq/internal/vision"
	"compliancehq/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----------------------------------------------------------------

type fakeSubsStore struct {
	subs    []*types.Subcontractor
	updated *types.Subcontractor
}

func (f *fakeSubsStore) Subcontractor(_ context.Context, tenantID, id string) (*types.Subcontractor, error) {
	for _, sub := range f.subs {
		if sub.ID == id && sub.TenantID == tenantID {
			return sub, nil
		}
	}
	return nil, types.ErrSubcontractorNotFound
}

func (f *fakeSubsStore) SubcontractorsByTenant(_ context.Context, tenantID string) ([]*types.Subcontractor, error) {
	return f.subs, nil
}

func (f *fakeSubsStore) NamesByTenant(_ context.Context, _ string) ([]string, error) {
	names := make([]string, 0, len(f.subs))
	for _, sub := range f.subs {
		names = append(names, sub.Name)
	}
	return names, nil
}

func (f *fakeSubsStore) CreateSubcontractor(_ context.Context, sub *types.Subcontractor) error {
	f.subs = append(f.subs, sub)
	return nil
}

func (f *fakeSubsStore) UpdateSubcontractor(_ context.Context, sub *types.Subcontractor) error {
	f.updated = sub
	return nil
}

func (f *fakeSubsStore) DeleteSubcontractor(_ context.Context, _, _ string) error {
	return nil
}

type fakeDocStore struct {
	docs []types.CertificateDocument
}

func (f *fakeDocStore) DocumentByID(_ context.Context, tenantID, id string) (*types.CertificateDocument, error) {
	for _, doc := range f.docs {
		if doc.ID == id {
			return &doc, nil
		}
	}
	return nil, types.ErrDocumentNotFound
}

func (f *fakeDocStore) DocumentsBySubcontractor(_ context.Context, _, subID string) ([]types.CertificateDocument, error) {
	var out []types.CertificateDocument
	for _, doc := range f.docs {
		if doc.SubcontractorID == subID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocStore) CreateDocument(_ context.Context, doc *types.CertificateDocument) error {
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, _, _ string) error { return nil }
func (f *fakeDocStore) DeleteDocumentsBySubcontractor(_ context.Context, _, _ string) error {
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key, _ string, body []byte) error {
	f.objects[key] = body
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, string, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, "", errors.New("object not found")
	}
	return body, "image/png", nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "https://certificates.example.test/" + key
}

type fakeExtractor struct {
	date    time.Time
	err     error
	enabled bool
}

func (f *fakeExtractor) Enabled() bool { return f.enabled }

func (f *fakeExtractor) ExtractExpiryDate(_ context.Context, _ []byte, _ string) (time.Time, error) {
	if f.err != nil {
		return time.Time{}, f.err
	}
	return f.date, nil
}

type fakeCognito struct {
	initiateAuthErr error
	accessToken     string
}

func (f *fakeCognito) SignUp(_ context.Context, _ *cognitoidentityprovider.SignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	return &cognitoidentityprovider.SignUpOutput{}, nil
}

func (f *fakeCognito) ConfirmSignUp(_ context.Context, _ *cognitoidentityprovider.ConfirmSignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
	return &cognitoidentityprovider.ConfirmSignUpOutput{}, nil
}

func (f *fakeCognito) InitiateAuth(_ context.Context, _ *cognitoidentityprovider.InitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	if f.initiateAuthErr != nil {
		return nil, f.initiateAuthErr
	}
	return &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &ctypes.AuthenticationResultType{AccessToken: aws.String(f.accessToken), ExpiresIn: 3600},
	}, nil
}

func (f *fakeCognito) GlobalSignOut(_ context.Context, _ *cognitoidentityprovider.GlobalSignOutInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error) {
	return &cognitoidentityprovider.GlobalSignOutOutput{}, nil
}

// ---- helpers --------------------------------------------------------------

func testConfig() *types.Config {
	return &types.Config{
		TenantID:          "tenant-test",
		WarningWindowDays: 30,
		CookieHashKey:     base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		CookieBlockKey:    base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")),
	}
}

func testService(t *testing.T, subs *fakeSubsStore, docs *fakeDocStore, storage *fakeStorage, extractor *fakeExtractor, cognito *fakeCognito) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := testConfig()

	templates, err := loadTemplates()
	require.NoError(t, err)

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	return &Service{
		logger:       logger,
		config:       config,
		cognito:      cognito,
		storage:      storage,
		subsRepo:     subs,
		documentRepo: docs,
		extractor:    extractor,
		templates:    templates,
		cookie:       securecookie.New(hashKey, blockKey),
	}
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), contextKeyUserID, "user-1")
	ctx = context.WithValue(ctx, contextKeyEmail, "site@acme.test")
	return req.WithContext(ctx)
}

func expiryIn(days int) *time.Time {
	t := time.Now().AddDate(0, 0, days)
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}

func rosterFixture() *fakeSubsStore {
	trade := "Roofing"
	return &fakeSubsStore{subs: []*types.Subcontractor{
		{ID: "sub-safe", TenantID: "tenant-test", Name: "Acme Roofing", Trade: &trade, InsuranceExpiry: expiryIn(120), DataStatus: types.DataStatusVerified},
		{ID: "sub-warning", TenantID: "tenant-test", Name: "Delta Groundworks", InsuranceExpiry: expiryIn(10), DataStatus: types.DataStatusVerified},
		{ID: "sub-expired", TenantID: "tenant-test", Name: "Harbour Plumbing", InsuranceExpiry: expiryIn(-5), DataStatus: types.DataStatusVerified},
		{ID: "sub-missing", TenantID: "tenant-test", Name: "Northside Joinery", DataStatus: types.DataStatusIncomplete},
	}}
}

// ---- tests ----------------------------------------------------------------

func TestDashboardRendersRoster(t *testing.T) {
	s := testService(t, rosterFixture(), &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, &fakeCognito{})

	rec := httptest.NewRecorder()
	s.handleDashboard(rec, authedRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Acme Roofing")
	require.Contains(t, body, "Delta Groundworks")
	require.Contains(t, body, "Harbour Plumbing")
	require.Contains(t, body, "Northside Joinery")
	require.Contains(t, body, "status-safe")
	require.Contains(t, body, "status-warning")
	require.Contains(t, body, "status-expired")
	require.Contains(t, body, "status-missing")
}

func TestDashboardStatusFilter(t *testing.T) {
	s := testService(t, rosterFixture(), &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, &fakeCognito{})

	rec := httptest.NewRecorder()
	s.handleDashboard(rec, authedRequest(http.MethodGet, "/?status=expired", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Harbour Plumbing")
	require.NotContains(t, body, "Acme Roofing")
}

func TestDashboardWindowChangesClassification(t *testing.T) {
	s := testService(t, rosterFixture(), &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, &fakeCognito{})

	// With a 90-day window, the 120-day-out row is still safe but the
	// summary is recomputed; a 10-day-out row stays a warning.
	rec := httptest.NewRecorder()
	s.handleDashboard(rec, authedRequest(http.MethodGet, "/?status=safe&window=90", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Acme Roofing")
	require.NotContains(t, body, "Delta Groundworks")
}

func TestWarningWindowClamping(t *testing.T) {
	s := testService(t, &fakeSubsStore{}, &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, &fakeCognito{})

	require.Equal(t, 60, s.warningWindow("60"))
	require.Equal(t, 30, s.warningWindow("45"))
	require.Equal(t, 30, s.warningWindow("bogus"))
	require.Equal(t, 30, s.warningWindow(""))
}

func TestLoginFailureReprompts(t *testing.T) {
	cognito := &fakeCognito{initiateAuthErr: errors.New("NotAuthorizedException")}
	s := testService(t, &fakeSubsStore{}, &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, cognito)

	formBody := url.Values{"email": {"site@acme.test"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(formBody.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	s.handlePostLogin(rec, req)

	// Recoverable: re-prompt inline rather than erroring out.
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid email or password.")
	require.Contains(t, rec.Body.String(), "site@acme.test")
}

func TestRequireAuthRedirectsWithoutCookie(t *testing.T) {
	s := testService(t, &fakeSubsStore{}, &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, &fakeCognito{})

	handler := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestExtractNotFoundIsSoftFailure(t *testing.T) {
	subs := rosterFixture()
	docs := &fakeDocStore{docs: []types.CertificateDocument{
		{ID: "doc-1", SubcontractorID: "sub-missing", TenantID: "tenant-test", StorageKey: "tenant-test/sub-missing/cert.png", MimeType: "image/png"},
	}}
	storage := newFakeStorage()
	storage.objects["tenant-test/sub-missing/cert.png"] = []byte{0x89}
	extractor := &fakeExtractor{enabled: true, err: vision.ErrDateNotFound}

	s := testService(t, subs, docs, storage, extractor, &fakeCognito{})

	mux := flow.New()
	mux.HandleFunc("/subcontractor/:id/documents/:documentID/extract", s.handlePostDocumentExtract, http.MethodPost)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/subcontractor/sub-missing/documents/doc-1/extract", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "notice=")
	require.Nil(t, subs.updated, "a not-found reply must not update the record")
}

func TestExtractSuccessVerifiesRecord(t *testing.T) {
	subs := rosterFixture()
	docs := &fakeDocStore{docs: []types.CertificateDocument{
		{ID: "doc-1", SubcontractorID: "sub-missing", TenantID: "tenant-test", StorageKey: "tenant-test/sub-missing/cert.png", MimeType: "image/png"},
	}}
	storage := newFakeStorage()
	storage.objects["tenant-test/sub-missing/cert.png"] = []byte{0x89}

	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	extractor := &fakeExtractor{enabled: true, date: want}

	s := testService(t, subs, docs, storage, extractor, &fakeCognito{})

	mux := flow.New()
	mux.HandleFunc("/subcontractor/:id/documents/:documentID/extract", s.handlePostDocumentExtract, http.MethodPost)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/subcontractor/sub-missing/documents/doc-1/extract", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.NotNil(t, subs.updated)
	require.Equal(t, types.DataStatusVerified, subs.updated.DataStatus)
	require.NotNil(t, subs.updated.InsuranceExpiry)
	require.True(t, subs.updated.InsuranceExpiry.Equal(want))
}

func TestSubcontractorEditReclassifies(t *testing.T) {
	subs := rosterFixture()
	s := testService(t, subs, &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, &fakeCognito{})

	mux := flow.New()
	mux.HandleFunc("/subcontractor/:id", s.handlePostSubcontractor, http.MethodPost)

	formBody := url.Values{
		"name":             {"Northside Joinery"},
		"trade":            {"Joinery"},
		"insurance_expiry": {"2026-06-30"},
	}
	req := authedRequest(http.MethodPost, "/subcontractor/sub-missing", strings.NewReader(formBody.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.NotNil(t, subs.updated)
	require.Equal(t, types.DataStatusVerified, subs.updated.DataStatus)

	// Clearing the date quarantines the row again.
	formBody.Set("insurance_expiry", "")
	req = authedRequest(http.MethodPost, "/subcontractor/sub-missing", strings.NewReader(formBody.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, types.DataStatusIncomplete, subs.updated.DataStatus)
	require.Nil(t, subs.updated.InsuranceExpiry)
}

func TestImportPageRequiresFile(t *testing.T) {
	s := testService(t, &fakeSubsStore{}, &fakeDocStore{}, newFakeStorage(), &fakeExtractor{}, &fakeCognito{})

	req := authedRequest(http.MethodPost, "/import/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")

	rec := httptest.NewRecorder()
	s.handlePostImportUpload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Import Workers")
}
