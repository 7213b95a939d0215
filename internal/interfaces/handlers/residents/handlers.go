package residents

import (
	slotsvc "parknet-backend/internal/application/slots"
	"parknet-backend/internal/domain"
	"parknet-backend/internal/middleware"
	"parknet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *slotsvc.Service
}

// GET /api/v1/residents/:id/slots. The resident themself or an administrator.
func (h *Handlers) Slots(c *fiber.Ctx) error {
	residentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid resident id", fiber.StatusBadRequest, nil)
	}
	self, _ := middleware.ResidentID(c)
	if self != residentID && !middleware.IsAdmin(c) {
		return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
	}
	list, err := h.Service.Slots(c.UserContext(), residentID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Vehicle slots fetched successfully", list, nil)
}

// POST /api/v1/residents/:id/slots/:vehicle_type/release. Administrative correction.
func (h *Handlers) Release(c *fiber.Ctx) error {
	residentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid resident id", fiber.StatusBadRequest, nil)
	}
	vt := domain.VehicleType(c.Params("vehicle_type"))
	slot, err := h.Service.Release(c.UserContext(), residentID, vt)
	if err != nil {
		return response.FromError(c, err)
	}
	admin := ""
	if u := middleware.GetUser(c); u != nil {
		admin = u.ResidentID
	}
	log.Info().Str("resident_id", residentID.String()).Str("vehicle_type", string(vt)).Str("by", admin).Msg("vehicle slot released")
	return response.Success(c, "Vehicle slot released successfully", slot, nil)
}
