package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"compliancehq/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// CognitoAPI is the slice of the Cognito client the auth handlers use.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// SubcontractorStore is satisfied by *store.SubcontractorRepository.
type SubcontractorStore interface {
	Subcontractor(ctx context.Context, tenantID, id string) (*types.Subcontractor, error)
	SubcontractorsByTenant(ctx context.Context, tenantID string) ([]*types.Subcontractor, error)
	NamesByTenant(ctx context.Context, tenantID string) ([]string, error)
	CreateSubcontractor(ctx context.Context, sub *types.Subcontractor) error
	UpdateSubcontractor(ctx context.Context, sub *types.Subcontractor) error
	DeleteSubcontractor(ctx context.Context, tenantID, id string) error
}

// DocumentStore is satisfied by *store.DocumentRepository.
type DocumentStore interface {
	DocumentByID(ctx context.Context, tenantID, id string) (*types.CertificateDocument, error)
	DocumentsBySubcontractor(ctx context.Context, tenantID, subcontractorID string) ([]types.CertificateDocument, error)
	CreateDocument(ctx context.Context, doc *types.CertificateDocument) error
	DeleteDocument(ctx context.Context, tenantID, id string) error
	DeleteDocumentsBySubcontractor(ctx context.Context, tenantID, subcontractorID string) error
}

// ObjectStorage is satisfied by *storage.S3Storage.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, contentType string, body []byte) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// DateExtractor is satisfied by *vision.Extractor.
type DateExtractor interface {
	Enabled() bool
	ExtractExpiryDate(ctx context.Context, image []byte, mimeType string) (time.Time, error)
}

type Service struct {
	logger       *logrus.Logger
	config       *types.Config
	cognito      CognitoAPI
	storage      ObjectStorage
	subsRepo     SubcontractorStore
	documentRepo DocumentStore
	extractor    DateExtractor
	templates    *template.Template

	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognito CognitoAPI,
	storage ObjectStorage,
	subsRepo SubcontractorStore,
	documentRepo DocumentStore,
	extractor DateExtractor,
	jwksCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:  logger,
		config:  config,
		cognito: cognito,
		storage: storage,
		cookie:  securecookie.New(hashKey, blockKey),

		subsRepo:     subsRepo,
		documentRepo: documentRepo,
		extractor:    extractor,

		jwksCache: jwksCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/register/confirm", s.handleGetRegisterConfirm, http.MethodGet)
	r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/", s.handleDashboard, http.MethodGet)
		r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

		r.HandleFunc("/import", s.handleGetImport, http.MethodGet)
		r.HandleFunc("/import/upload", s.handlePostImportUpload, http.MethodPost)
		r.HandleFunc("/import/run", s.handlePostImportRun, http.MethodPost)

		r.HandleFunc("/subcontractor/:id", s.handleGetSubcontractor, http.MethodGet)
		r.HandleFunc("/subcontractor/:id", s.handlePostSubcontractor, http.MethodPost)
		r.HandleFunc("/subcontractor/:id/delete", s.handlePostSubcontractorDelete, http.MethodPost)

		r.HandleFunc("/subcontractor/:id/documents", s.handlePostDocumentUpload, http.MethodPost)
		r.HandleFunc("/subcontractor/:id/documents/:documentID/delete", s.handlePostDocumentDelete, http.MethodPost)
		r.HandleFunc("/subcontractor/:id/documents/:documentID/extract", s.handlePostDocumentExtract, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
