package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/restoapp/pos/internal/dto"
	"github.com/restoapp/pos/internal/entity"
	"github.com/restoapp/pos/internal/presentation/http/response"
	service "github.com/restoapp/pos/internal/service/auth"
	"github.com/restoapp/pos/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/restoapp/pos/transport/http/user")

// Handler exposes staff account endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a user Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/login", h.login)

	g := e.Group("/users")
	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload dto.LoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.login", trace.WithAttributes(attribute.String("user.username", payload.Username)))
	defer span.End()

	usr, err := h.svc.Login(ctx, payload.Username, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(usr)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "users.list")
	defer span.End()

	users, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toDTO(&users[i]))
	}
	return b.WithData(out).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.UserRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.create", trace.WithAttributes(attribute.String("user.username", payload.Username)))
	defer span.End()

	usr, err := h.svc.Create(ctx, payload.Username, payload.Password, entity.Role(payload.Role))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(usr)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := userID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UserRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.update", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	usr, err := h.svc.Update(ctx, id, payload.Username, payload.Password, entity.Role(payload.Role))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(usr)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := userID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func userID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id")
	}
	return id, nil
}

func toDTO(usr *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       usr.ID,
		Username: usr.Username,
		Role:     string(usr.Role),
	}
}
