package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vocdoni/modelpass/attribution"
	"github.com/vocdoni/modelpass/log"
	stg "github.com/vocdoni/modelpass/storage"
)

const (
	maxRequestBodyLog = 512 // Maximum length of request body to log
)

// APIConfig type represents the configuration for the API HTTP server.
// It includes the host, port, the registry storage and optionally the
// attribution pipeline for the verification endpoint.
type APIConfig struct {
	Host     string
	Port     int
	Storage  *stg.Storage          // Registry backing the passport and certificate endpoints
	Pipeline *attribution.Pipeline // Optional: enables the verification endpoint
}

// API type represents the registry and verification HTTP server.
type API struct {
	router   *chi.Mux
	storage  *stg.Storage
	pipeline *attribution.Pipeline
}

// New creates a new API instance with the given configuration and starts
// the HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	a := &API{
		storage:  conf.Storage,
		pipeline: conf.Pipeline,
	}

	// Initialize router
	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the HTTP handlers for the API endpoints.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", InfoEndpoint, "method", "GET")
	a.router.Get(InfoEndpoint, a.info)
	// passport endpoints
	log.Infow("register handler", "endpoint", PassportsEndpoint, "method", "POST")
	a.router.Post(PassportsEndpoint, a.importPassport)
	log.Infow("register handler", "endpoint", PassportsEndpoint, "method", "GET")
	a.router.Get(PassportsEndpoint, a.passportList)
	log.Infow("register handler", "endpoint", PassportEndpoint, "method", "GET")
	a.router.With(validModelIDMiddleware).Get(PassportEndpoint, a.passport)
	log.Infow("register handler", "endpoint", PassportEndpoint, "method", "DELETE")
	a.router.With(validModelIDMiddleware).Delete(PassportEndpoint, a.deletePassport)
	log.Infow("register handler", "endpoint", PassportCertificatesEndpoint, "method", "GET")
	a.router.With(validModelIDMiddleware).Get(PassportCertificatesEndpoint, a.passportCertificates)
	// certificate endpoints
	log.Infow("register handler", "endpoint", CertificatesEndpoint, "method", "POST")
	a.router.Post(CertificatesEndpoint, a.importCertificate)
	log.Infow("register handler", "endpoint", CertificatesEndpoint, "method", "GET")
	a.router.Get(CertificatesEndpoint, a.certificateList)
	log.Infow("register handler", "endpoint", CertificateEndpoint, "method", "GET")
	a.router.Get(CertificateEndpoint, a.certificate)

	// verification endpoint (if the pipeline is available)
	if a.pipeline != nil {
		log.Infow("register handler", "endpoint", VerifyEndpoint, "method", "POST")
		a.router.Post(VerifyEndpoint, a.verify)
	}
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(loggingMiddleware(maxRequestBodyLog))
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}
