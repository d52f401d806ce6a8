package main

import (
	"context"
	"fmt"
	"time"

	_ "notely/docs" // Load swagger docs

	"notely/cmd/server/handlers"
	"notely/cmd/server/handlers/auth"
	billingHandlers "notely/cmd/server/handlers/billing"
	calendarHandlers "notely/cmd/server/handlers/calendar"
	"notely/cmd/server/handlers/httperr"
	notesHandlers "notely/cmd/server/handlers/notes"
	"notely/cmd/server/middlewares"
	"notely/internal/clients/mongo"
	"notely/internal/config"
	"notely/internal/logger"
	"notely/internal/services/calendar"
	"notely/internal/services/entitlements"
	"notely/internal/services/identity"
	"notely/internal/services/notes"
	"notely/internal/services/profiles"
	util "notely/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// Accounts is everything the router needs from the profile layer.
type Accounts interface {
	auth.Service
	middlewares.SessionResolver
	handlers.ProfileService
}

// Services bundles the domain services behind the HTTP surface.
type Services struct {
	Accounts Accounts
	Notes    notesHandlers.Service
	Calendar calendarHandlers.Service
	Billing  billingHandlers.Service
}

// seederFunc adapts a function to profiles.DefaultsSeeder.
type seederFunc func(ctx context.Context, profileID string) error

func (f seederFunc) SeedDefaults(ctx context.Context, profileID string) error {
	return f(ctx, profileID)
}

// buildServices opens the Mongo repositories and wires the services on top
// of them. mongo.Init must have succeeded.
func buildServices(ctx context.Context, cfg config.Config) (*Services, error) {
	db := mongo.DB()
	log := logger.L()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	usersRepo, err := mongo.NewUsersRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("users repo: %w", err)
	}
	sessionsRepo, err := mongo.NewSessionsRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("sessions repo: %w", err)
	}
	profilesRepo, err := mongo.NewProfilesRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("profiles repo: %w", err)
	}
	notesRepo, err := mongo.NewNotesRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notes.ErrCreateNotesRepo, err)
	}
	eventsRepo, err := mongo.NewEventsRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("events repo: %w", err)
	}
	remindersRepo, err := mongo.NewRemindersRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reminders repo: %w", err)
	}
	purchasesRepo, err := mongo.NewPurchasesRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("purchases repo: %w", err)
	}

	identitySvc := identity.NewService(usersRepo, sessionsRepo, cfg, log)

	// profiles seeds through notes, notes reads subscriptions through profiles.
	var notesSvc *notes.Service
	profilesSvc := profiles.NewService(profilesRepo, identitySvc, seederFunc(func(ctx context.Context, id string) error {
		return notesSvc.SeedDefaults(ctx, id)
	}), log)
	notesSvc = notes.NewService(notesRepo, profilesSvc, loc, log)

	calendarSvc := calendar.NewService(eventsRepo, remindersRepo, notesRepo, profilesSvc, calendar.NewEngine(loc), log)

	provider, platform := billingProvider(cfg)
	if platform == platformSandbox {
		log.Info("billing runs against the sandbox provider")
	}
	billingSvc := entitlements.NewBillingService(provider, purchasesRepo, entitlements.NewEngine(profilesRepo, log), platform, log)

	return &Services{
		Accounts: profilesSvc,
		Notes:    notesSvc,
		Calendar: calendarSvc,
		Billing:  billingSvc,
	}, nil
}

const (
	platformSandbox = "sandbox"
	platformGateway = "gateway"
)

// billingProvider approves purchases locally in dev mode only. Outside dev
// mode Config.Validate guarantees BILLING_URL is set.
func billingProvider(cfg config.Config) (entitlements.BillingProvider, string) {
	if cfg.DevMode {
		return entitlements.SandboxProvider{}, platformSandbox
	}
	return entitlements.NewHTTPProvider(cfg.BillingURL), platformGateway
}

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config) (*fiber.App, error) {
	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, svc)
}

// newApp mounts the HTTP surface over svc.
func newApp(cfg config.Config, svc *Services) (*fiber.App, error) {
	v, err := util.NewValidator()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	app.Get("/docs/*", swagger.HandlerDefault)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	session := middlewares.Session(cfg, svc.Accounts)

	authH := auth.NewHandlers(svc.Accounts, v)
	authGrp := v1.Group("/auth", middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration))
	authGrp.Post("/sign-up", authH.SignUp)
	authGrp.Post("/sign-in", authH.SignIn)
	authGrp.Post("/sign-out", session, authH.SignOut)

	meH := handlers.NewMeHandlers(svc.Accounts, v)
	meGrp := v1.Group("/me", session)
	meGrp.Get("/", meH.Me)
	meGrp.Patch("/", meH.Update)
	meGrp.Get("/entitlements", meH.Entitlements)

	notesH := notesHandlers.NewHandlers(svc.Notes, v)
	notesGrp := v1.Group("/notes", session)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/", notesH.List)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Patch("/:id", notesH.Update)
	notesGrp.Post("/:id/todos/:todoID/toggle", notesH.ToggleTodo)
	notesGrp.Delete("/:id", notesH.Delete)

	calH := calendarHandlers.NewHandlers(svc.Calendar, v)
	calGrp := v1.Group("/calendar", session)
	calGrp.Get("/month", calH.Month)
	calGrp.Get("/day", calH.Day)
	calGrp.Get("/export.ics", calH.Export)
	calGrp.Post("/events", calH.CreateEvent)
	calGrp.Get("/events", calH.ListEvents)
	calGrp.Patch("/events/:id", calH.UpdateEvent)
	calGrp.Delete("/events/:id", calH.DeleteEvent)
	calGrp.Get("/events/:id/reminders", calH.EventReminders)
	calGrp.Post("/reminders", calH.CreateReminder)
	calGrp.Get("/reminders", calH.ListReminders)
	calGrp.Post("/reminders/:id/complete", calH.CompleteReminder)
	calGrp.Delete("/reminders/:id", calH.DeleteReminder)

	billH := billingHandlers.NewHandlers(svc.Billing, v)
	v1.Get("/billing/products", billH.Products)
	billGrp := v1.Group("/billing", session)
	billGrp.Post("/purchase", billH.Purchase)
	billGrp.Get("/history", billH.History)

	return app, nil
}
