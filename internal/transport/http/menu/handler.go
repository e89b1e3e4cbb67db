package menu

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
	service "github.com/restoapp/pos/internal/service/menu"
	"github.com/restoapp/pos/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/restoapp/pos/transport/http/menu")

// Handler exposes menu endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a menu Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/menu")
	g.GET("", h.categories)
	g.GET("/items/:id", h.get)
	g.POST("/items", h.create)
	g.PUT("/items/:id", h.update)
	g.DELETE("/items/:id", h.remove)
}

func (h *Handler) categories(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.categories")
	defer span.End()

	cats, err := h.svc.Categories(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.MenuCategoryResponse, 0, len(cats))
	for i := range cats {
		cat := dto.MenuCategoryResponse{Name: cats[i].Name}
		for j := range cats[i].Items {
			cat.Items = append(cat.Items, toDTO(&cats[i].Items[j]))
		}
		out = append(out, cat)
	}
	return b.WithData(out).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	id, err := itemID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.get", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	item, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(item)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.MenuItemRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	item := &entity.MenuItem{
		Category:  payload.Category,
		Name:      payload.Name,
		Price:     payload.Price,
		Available: payload.Available,
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.create", trace.WithAttributes(attribute.String("menu_item.name", item.Name)))
	defer span.End()

	if err := h.svc.Create(ctx, item); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(item)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := itemID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.MenuItemRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	item := &entity.MenuItem{
		ID:        id,
		Category:  payload.Category,
		Name:      payload.Name,
		Price:     payload.Price,
		Available: payload.Available,
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.update", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	if err := h.svc.Update(ctx, item); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(item)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := itemID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.delete", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func itemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id")
	}
	return id, nil
}

func toDTO(item *entity.MenuItem) dto.MenuItemResponse {
	return dto.MenuItemResponse{
		ID:        item.ID,
		Category:  item.Category,
		Name:      item.Name,
		Price:     item.Price,
		Available: item.Available,
	}
}
