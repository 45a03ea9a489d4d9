// Package backend is an in-process reference implementation of the boundary
// the client core consumes: the REST API plus the websocket push channel.
// It exists for local development and integration tests; the production
// backend, its storage engine and its policies stay out of scope.
package backend

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/config"
	"github.com/spec-kit/trackify/internal/domain"
	apperrors "github.com/spec-kit/trackify/pkg/util"
)

// Server bundles the REST app and the push listener.
type Server struct {
	App    *fiber.App
	Hub    *Hub
	Store  *Store
	push   *http.Server
	cfg    *config.Config
	logger *zap.Logger
}

// NewServer wires the store, auth, handlers and routes.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	store := NewStore()
	tokens := NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	hub := NewHub(logger)
	handlers := NewHandlers(store, tokens, hub, cfg.Auth.BcryptCost)
	authmw := NewAuthMiddleware(tokens, store)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(errorHandlingMiddleware(logger))
	app.Use(requestLogger(logger))
	registerRoutes(app, handlers, authmw)

	pushMux := http.NewServeMux()
	pushMux.Handle("/push", hub)

	return &Server{
		App:    app,
		Hub:    hub,
		Store:  store,
		push:   &http.Server{Addr: cfg.App.PushAddr(), Handler: pushMux},
		cfg:    cfg,
		logger: logger,
	}
}

// Seed provisions accounts and service centers from the YAML fixture.
func (s *Server) Seed(seed *config.Seed) error {
	for _, user := range seed.Users {
		role, err := domain.ParseRole(user.Role)
		if err != nil {
			return err
		}
		hash, err := HashPassword(user.Password, s.cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		if _, err := s.Store.CreateAccount(user.Name, user.Email, hash, role, "", ""); err != nil {
			return err
		}
	}
	for _, center := range seed.ServiceCenters {
		hash, err := HashPassword(center.Password, s.cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		account, err := s.Store.CreateAccount(center.Name, center.Email, hash, domain.RoleServiceCenter, center.City, center.Phone)
		if err != nil {
			return err
		}
		if center.Verified {
			s.Store.VerifyCenter(account.CenterID)
		}
	}
	return nil
}

// Run serves REST and push traffic until one listener fails.
func (s *Server) Run() error {
	errCh := make(chan error, 2)
	go func() { errCh <- s.push.ListenAndServe() }()
	go func() { errCh <- s.App.Listen(s.cfg.App.Addr()) }()
	return <-errCh
}

// Shutdown stops both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Hub.Close()
	_ = s.push.Shutdown(ctx)
	return s.App.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, h *Handlers, authmw *AuthMiddleware) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)

	tickets := api.Group("/tickets")
	tickets.Post("/track", h.Track)
	tickets.Post("/resend-otp", h.ResendOTP)
	tickets.Post("/", authmw.Handle, RequireRole(domain.RoleVendor), h.CreateTicket)
	tickets.Get("/", authmw.Handle, RequireRole(), h.ListTickets)
	tickets.Get("/:ticketId", authmw.Handle, RequireRole(), h.GetTicket)
	tickets.Patch("/:ticketId/status", authmw.Handle, RequireRole(domain.RoleVendor, domain.RoleServiceCenter), h.UpdateStatus)
	tickets.Delete("/:ticketId/updates/:eventId", authmw.Handle, RequireRole(domain.RoleVendor), h.DeleteEvent)

	requests := api.Group("/job-requests", authmw.Handle)
	requests.Post("/", RequireRole(domain.RoleVendor), h.CreateJobRequest)
	requests.Get("/vendor", RequireRole(domain.RoleVendor), h.ListVendorRequests)
	requests.Get("/service-center", RequireRole(domain.RoleServiceCenter), h.ListCenterRequests)
	requests.Put("/:id/status", RequireRole(domain.RoleServiceCenter), h.DecideJobRequest)

	centers := api.Group("/service-centers")
	centers.Get("/", authmw.Handle, RequireRole(), h.ListCenters)
	centers.Patch("/:id/verify", authmw.Handle, RequireRole(domain.RoleAdmin), h.VerifyCenter)
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewTransient(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}
