package httpapi

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/service"
)

// Deps: всё, что нужно HTTP-слою.
type Deps struct {
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Memberships  *service.MembershipService
	Schedules    *service.ScheduleService
	Catalog      *service.CatalogService
	Auth         *service.AuthService

	// Часовой пояс площадки, от него считается "сегодня".
	Location *time.Location
	Logger   *zap.Logger
}

type Handler struct {
	availability *service.AvailabilityService
	bookings     *service.BookingService
	memberships  *service.MembershipService
	schedules    *service.ScheduleService
	catalog      *service.CatalogService
	auth         *service.AuthService

	loc      *time.Location
	validate *validator.Validate
	logger   *zap.Logger
}

// NewApp собирает fiber-приложение со всеми маршрутами.
func NewApp(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}

	h := &Handler{
		availability: d.Availability,
		bookings:     d.Bookings,
		memberships:  d.Memberships,
		schedules:    d.Schedules,
		catalog:      d.Catalog,
		auth:         d.Auth,
		loc:          d.Location,
		validate:     newValidator(),
		logger:       d.Logger,
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          errorHandler(d.Logger),
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(requestLogger(d.Logger))
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	h.routes(app)

	app.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "route not found", nil)
	})

	return app
}

func (h *Handler) routes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return ok(c, "ok", fiber.Map{"time": time.Now().UTC()})
	})

	api := app.Group("/api")

	// Публичная часть: сетка доступности и справочники.
	api.Get("/availability/daily", h.dailyAvailability)
	api.Get("/availability/weekly", h.weeklyAvailability)
	api.Get("/availability/memberships", h.membershipAvailability)
	api.Get("/fields", h.listFields)
	api.Get("/fields/:id", h.getField)
	api.Get("/packages", h.listPackages)
	api.Get("/packages/:id", h.getPackage)
	api.Get("/schedules", h.listSchedules)
	api.Get("/schedules/:id", h.getSchedule)

	api.Post("/auth/login", h.login)
	api.Get("/auth/me", h.requireAuth, h.me)

	dash := api.Group("/dashboard", h.requireAuth)
	dash.Get("/agenda", h.agenda)
	dash.Get("/availability/memberships", h.memberAvailability)

	dash.Get("/customers", h.listCustomers)
	dash.Post("/customers", h.createCustomer)
	dash.Get("/customers/:id", h.getCustomer)
	dash.Put("/customers/:id", h.updateCustomer)
	dash.Delete("/customers/:id", h.deleteCustomer)

	dash.Post("/fields", h.createField)
	dash.Put("/fields/:id", h.updateField)
	dash.Delete("/fields/:id", h.deleteField)
	dash.Put("/fields/:id/schedules", h.replaceSchedules)

	dash.Post("/packages", h.createPackage)
	dash.Put("/packages/:id", h.updatePackage)
	dash.Delete("/packages/:id", h.deletePackage)

	dash.Put("/schedules/:id", h.updateSchedule)
	dash.Delete("/schedules/:id", h.deleteSchedule)

	dash.Get("/bookings", h.listBookings)
	dash.Post("/bookings", h.createBooking)
	dash.Get("/bookings/:id", h.getBooking)
	dash.Put("/bookings/:id", h.updateBooking)
	dash.Delete("/bookings/:id", h.deleteBooking)

	dash.Get("/memberships", h.listMemberships)
	dash.Post("/memberships", h.createMembership)
	dash.Post("/memberships/batch", h.createMembershipBatch)
	dash.Get("/memberships/:id", h.getMembership)
	dash.Put("/memberships/:id", h.updateMembership)
	dash.Delete("/memberships/:id", h.deleteMembership)

	users := dash.Group("/users", requireRoles(model.UserRoleAdmin))
	users.Get("", h.listUsers)
	users.Post("", h.createUser)
	users.Get("/:id", h.getUser)
	users.Put("/:id", h.updateUser)
	users.Delete("/:id", h.deleteUser)
}

// today: текущая дата площадки, вычисляется один раз на запрос.
func (h *Handler) today() time.Time {
	return calendar.Today(h.loc)
}
