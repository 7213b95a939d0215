package lottery

import (
	lotterysvc "parknet-backend/internal/application/lottery"
	"parknet-backend/internal/domain"
	"parknet-backend/internal/middleware"
	"parknet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *lotterysvc.Service
}

type runBody struct {
	Period   string         `json:"period"`
	Capacity map[string]int `json:"capacity"`
}

// POST /api/v1/lotteries. Administrators run the period draw.
func (h *Handlers) Run(c *fiber.Ctx) error {
	var body runBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if body.Period == "" {
		return response.Error(c, "period is required", fiber.StatusBadRequest, nil)
	}
	capacity := make(map[domain.VehicleType]int, len(body.Capacity))
	for k, v := range body.Capacity {
		capacity[domain.VehicleType(k)] = v
	}
	rec, err := h.Service.RunLottery(c.UserContext(), body.Period, capacity)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Lottery executed successfully", rec, fiber.Map{
		"participants": len(rec.Participants),
		"winners":      len(rec.Winners),
	})
}

// GET /api/v1/lotteries/:period?vehicle_type=car
func (h *Handlers) Result(c *fiber.Ctx) error {
	var vt *domain.VehicleType
	if s := c.Query("vehicle_type"); s != "" {
		v := domain.VehicleType(s)
		vt = &v
	}
	rec, err := h.Service.GetResult(c.UserContext(), c.Params("period"), vt)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Lottery fetched successfully", rec, nil)
}

// GET /api/v1/lotteries/:period/my-assignment
func (h *Handlers) MyAssignment(c *fiber.Ctx) error {
	residentID, err := middleware.ResidentID(c)
	if err != nil {
		return response.Unauthorized(c, "Invalid session")
	}
	entries, err := h.Service.MyAssignments(c.UserContext(), residentID, c.Params("period"))
	if err != nil {
		return response.FromError(c, err)
	}
	won := 0
	for _, e := range entries {
		if e.Spot != "" {
			won++
		}
	}
	return response.Success(c, "Assignment fetched successfully", entries, fiber.Map{"won": won})
}
