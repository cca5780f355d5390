package inventory

import (
	"errors"

	"media-inventory/core/logger"
	"media-inventory/feature/inventory/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for the inventory.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	devices := app.Group("/devices")
	devices.Get("/", h.HandleListDevices)
	devices.Get("/:slug", h.HandleGetDevice)
	devices.Get("/:slug/tree", h.HandleGetTree)
	devices.Post("/:slug/tree/export", h.HandleTreeExport)

	app.Get("/media", h.HandleListMediaFiles)
}

// HandleListDevices returns every registered device.
func (h *Handler) HandleListDevices(c *fiber.Ctx) error {
	devices, err := h.service.ListDevices(c.Context())
	if err != nil {
		return h.internalError(c, "Device listing failed", err)
	}
	return c.JSON(devices)
}

// HandleGetDevice returns one device with its directories.
func (h *Handler) HandleGetDevice(c *fiber.Ctx) error {
	device, ok, err := h.resolveDevice(c)
	if !ok {
		return err
	}

	directories, err := h.service.ListDirectories(c.Context(), device)
	if err != nil {
		return h.internalError(c, "Directory listing failed", err)
	}

	return c.JSON(fiber.Map{
		"device":      device,
		"directories": directories,
	})
}

// HandleGetTree returns the aggregated occupancy tree of a device.
func (h *Handler) HandleGetTree(c *fiber.Ctx) error {
	device, ok, err := h.resolveDevice(c)
	if !ok {
		return err
	}

	node, err := h.service.BuildTree(c.Context(), device)
	if err != nil {
		return h.internalError(c, "Tree aggregation failed", err)
	}

	return c.JSON(fiber.Map{"tree": node})
}

// HandleTreeExport runs an ad-hoc aggregation action over tree node shaped
// entries and responds with {"content": ...}.
func (h *Handler) HandleTreeExport(c *fiber.Ctx) error {
	if _, ok, err := h.resolveDevice(c); !ok {
		return err
	}

	var req ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Request contains invalid JSON",
		})
	}

	content, err := RunExportAction(&req)
	if err != nil {
		var exportErr *ExportError
		if errors.As(err, &exportErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": exportErr.Message,
			})
		}
		return h.internalError(c, "Export action failed", err)
	}

	return c.JSON(fiber.Map{"content": content})
}

// HandleListMediaFiles returns media file rows, optionally filtered by the
// directory_id query parameter and paginated with limit/offset.
func (h *Handler) HandleListMediaFiles(c *fiber.Ctx) error {
	directoryID := uint(c.QueryInt("directory_id", 0))
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	files, err := h.service.ListMediaFiles(c.Context(), directoryID, limit, offset)
	if err != nil {
		return h.internalError(c, "Media file listing failed", err)
	}

	return c.JSON(files)
}

// resolveDevice fetches the device for the :slug route parameter.
// When ok is false the response has already been written and the returned
// error is the handler result.
func (h *Handler) resolveDevice(c *fiber.Ctx) (device *models.Device, ok bool, err error) {
	slug := c.Params("slug")

	found, lookupErr := h.service.GetDevice(c.Context(), slug)
	if lookupErr != nil {
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown device slug: " + slug,
			})
		}
		return nil, false, h.internalError(c, "Device lookup failed", lookupErr)
	}

	return found, true, nil
}

func (h *Handler) internalError(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
