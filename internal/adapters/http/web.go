package web

import (
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"lawoffice/internal/adapters/cache"
	"lawoffice/internal/adapters/email"
	"lawoffice/internal/adapters/events"
	"lawoffice/internal/adapters/http/middleware"
	"lawoffice/internal/adapters/objectstore"
	"lawoffice/internal/adapters/search"
	"lawoffice/internal/adapters/session"
	accountStore "lawoffice/internal/adapters/storage/account"
	appointmentStore "lawoffice/internal/adapters/storage/appointment"
	blogStore "lawoffice/internal/adapters/storage/blog"
	clientStore "lawoffice/internal/adapters/storage/client"
	documentStore "lawoffice/internal/adapters/storage/document"
	inquiryStore "lawoffice/internal/adapters/storage/inquiry"
	caseStore "lawoffice/internal/adapters/storage/legalcase"
	profileStore "lawoffice/internal/adapters/storage/profile"
	"lawoffice/internal/domain/access"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	ProfileStore     profileStore.Store
	BlogStore        blogStore.Store
	ClientStore      clientStore.Store
	CaseStore        caseStore.Store
	DocumentStore    documentStore.Store
	InquiryStore     inquiryStore.Store
	AppointmentStore appointmentStore.Store
}

// Services holds the non-storage collaborators. Sender, Events and Index
// fall back to no-op implementations when nil; Cache to a fresh cache.
type Services struct {
	Sessions *session.Provider
	Sender   email.Sender
	Events   events.Publisher
	Index    search.Index
	Cache    *cache.PostCache
	Objects  objectstore.Store
	// Uploads serves stored objects per bucket. Blog images are public;
	// documents sit behind the admin gate. Nil leaves /uploads/ unrouted.
	Uploads BucketServer
}

// BucketServer serves the objects of one bucket.
type BucketServer interface {
	BucketHandler(bucket string) http.Handler
}

// Options carries the HTTP settings resolved from config.
type Options struct {
	CSRFKey            []byte
	Secure             bool
	TrustedOrigins     []string
	CORSOrigins        []string
	RateLimitPerSecond float64
	SlowRequest        time.Duration
	OfficeEmail        string
	Location           *time.Location
	// Done stops background sweepers when closed.
	Done <-chan struct{}
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global services instance (set by NewMux)
var services *Services

// Office settings used by the contact form and the appointment editor.
var (
	officeEmail string
	officeLoc   = time.UTC
)

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, svc *Services, opts Options) http.Handler {
	stores = s
	services = withDefaults(svc)
	officeEmail = opts.OfficeEmail
	if opts.Location != nil {
		officeLoc = opts.Location
	}
	middleware.SecureCookies = opts.Secure

	rate := int(math.Ceil(opts.RateLimitPerSecond))
	if rate < 1 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(rate, time.Second, opts.Done)

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Timing(opts.SlowRequest),
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
	)
	r.NotFound(handleNotFound)

	r.Get("/healthz", handleHealth)
	if services.Uploads != nil {
		prefix := objectstore.BucketPrefix(objectstore.BucketBlogImages)
		r.Handle(prefix+"*", services.Uploads.BucketHandler(objectstore.BucketBlogImages))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(opts.CORSOrigins))
		r.Get("/blog/search", handleBlogSearch)
	})

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.CSRF(opts.CSRFKey, opts.Secure, opts.TrustedOrigins),
			middleware.Session(services.Sessions),
		)
		registerPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Gate(access.Requirement{Admin: true}, http.HandlerFunc(handleLoading)))
			registerAdminRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.Gate(access.Requirement{Client: true}, http.HandlerFunc(handleLoading)))
			r.Get("/client", handleClientPortal)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.Gate(access.Requirement{}, http.HandlerFunc(handleLoading)))
			r.Get("/account/password", handlePasswordForm)
			r.Post("/account/password", handlePasswordChange)
		})
	})
	return r
}

func registerPublicRoutes(r chi.Router) {
	r.Get("/", handleHome)
	r.Get("/about", handleAbout)
	r.Get("/services", handleServices)
	r.Get("/blog", handleBlogList)
	r.Get("/blog/{slug}", handleBlogPost)
	r.Get("/contact", handleContactForm)
	r.Post("/contact", handleContactSubmit)
	r.Get("/login", handleLoginForm)
	r.Post("/login", handleLogin)
	r.Get("/signup", handleSignUpForm)
	r.Post("/signup", handleSignUp)
	r.Post("/logout", handleLogout)
	r.Get("/unauthorized", handleUnauthorized)
}

// registerAdminRoutes mounts the back-office. Paths are registered in
// full so unmatched /admin paths fall through to the not-found page
// instead of the gate.
func registerAdminRoutes(r chi.Router) {
	r.Get("/admin", handleDashboard)

	if services.Uploads != nil {
		prefix := objectstore.BucketPrefix(objectstore.BucketDocuments)
		r.Handle(prefix+"*", services.Uploads.BucketHandler(objectstore.BucketDocuments))
	}

	r.Get("/admin/blog", handleAdminBlogList)
	r.Get("/admin/blog/new", handleBlogNew)
	r.Post("/admin/blog/new", handleBlogCreate)
	r.Get("/admin/blog/edit/{id}", handleBlogEdit)
	r.Post("/admin/blog/edit/{id}", handleBlogUpdate)
	r.Post("/admin/blog/image", handleBlogImageUpload)
	r.Post("/admin/blog/{id}/toggle", handleBlogToggle)
	r.Get("/admin/blog/{id}/delete", handleBlogDelete)
	r.Post("/admin/blog/{id}/delete", handleBlogDelete)

	r.Get("/admin/clients", handleClientList)
	r.Get("/admin/clients/new", handleClientNew)
	r.Post("/admin/clients/new", handleClientCreate)
	r.Get("/admin/clients/edit/{id}", handleClientEdit)
	r.Post("/admin/clients/edit/{id}", handleClientUpdate)
	r.Get("/admin/clients/{id}", handleClientDetail)
	r.Post("/admin/clients/{id}/toggle", handleClientToggle)
	r.Get("/admin/clients/{id}/delete", handleClientDelete)
	r.Post("/admin/clients/{id}/delete", handleClientDelete)

	r.Get("/admin/cases", handleCaseList)
	r.Get("/admin/cases/new", handleCaseNew)
	r.Post("/admin/cases/new", handleCaseCreate)
	r.Get("/admin/cases/edit/{id}", handleCaseEdit)
	r.Post("/admin/cases/edit/{id}", handleCaseUpdate)
	r.Get("/admin/cases/{id}", handleCaseDetail)
	r.Post("/admin/cases/{id}/status", handleCaseFields)
	r.Get("/admin/cases/{id}/delete", handleCaseDelete)
	r.Post("/admin/cases/{id}/delete", handleCaseDelete)

	r.Get("/admin/documents", handleDocumentList)
	r.Post("/admin/documents/upload", handleDocumentUpload)
	r.Get("/admin/documents/{id}/delete", handleDocumentDelete)
	r.Post("/admin/documents/{id}/delete", handleDocumentDelete)

	r.Get("/admin/inquiries", handleInquiryList)
	r.Post("/admin/inquiries/{id}/status", handleInquiryStatus)

	r.Get("/admin/appointments", handleAppointmentList)
	r.Post("/admin/appointments", handleAppointmentCreate)
	r.Get("/admin/appointments/edit/{id}", handleAppointmentEdit)
	r.Post("/admin/appointments/edit/{id}", handleAppointmentUpdate)
}

func withDefaults(svc *Services) *Services {
	out := *svc
	if out.Sender == nil {
		out.Sender = email.NewNoopSender()
	}
	if out.Events == nil {
		out.Events = events.NoopPublisher{}
	}
	if out.Index == nil {
		out.Index = search.NoopIndex{}
	}
	if out.Cache == nil {
		out.Cache = cache.NewPostCache(cache.DefaultTTL)
	}
	return &out
}
