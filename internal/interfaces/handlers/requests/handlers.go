package requests

import (
	"strconv"

	reqsvc "parknet-backend/internal/application/requests"
	"parknet-backend/internal/domain"
	"parknet-backend/internal/middleware"
	"parknet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *reqsvc.Service
}

type submitBody struct {
	VehicleType  string  `json:"vehicle_type"`
	LicensePlate string  `json:"license_plate"`
	Description  *string `json:"description"`
	Disability   bool    `json:"disability"`
	Pay          bool    `json:"pay"`
	Period       string  `json:"period"`
}

// POST /api/v1/requests. The session resident applies for a spot.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	residentID, err := middleware.ResidentID(c)
	if err != nil {
		return response.Unauthorized(c, "Invalid session")
	}
	var body submitBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if body.VehicleType == "" || body.LicensePlate == "" || body.Period == "" {
		return response.Error(c, "vehicle_type, license_plate and period are required", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.Submit(c.UserContext(), reqsvc.SubmitInput{
		ResidentID:   residentID,
		VehicleType:  domain.VehicleType(body.VehicleType),
		LicensePlate: body.LicensePlate,
		Description:  body.Description,
		Disability:   body.Disability,
		Pay:          body.Pay,
		Period:       body.Period,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Request submitted successfully", req, nil)
}

// GET /api/v1/requests/mine?offset=&limit=
func (h *Handlers) Mine(c *fiber.Ctx) error {
	residentID, err := middleware.ResidentID(c)
	if err != nil {
		return response.Unauthorized(c, "Invalid session")
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		return response.Error(c, "offset must be a number", fiber.StatusBadRequest, nil)
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return response.Error(c, "limit must be a number", fiber.StatusBadRequest, nil)
	}
	list, err := h.Service.ListForResident(c.UserContext(), residentID, offset, limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests fetched successfully", list, fiber.Map{
		"count":  len(list),
		"offset": offset,
		"limit":  limit,
	})
}

// GET /api/v1/requests/:id. The owning resident or an administrator.
func (h *Handlers) Get(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid request id", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.Get(c.UserContext(), requestID)
	if err != nil {
		return response.FromError(c, err)
	}
	self, _ := middleware.ResidentID(c)
	if req.ResidentID != self && !middleware.IsAdmin(c) {
		return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
	}
	return response.Success(c, "Request fetched successfully", req, nil)
}

// GET /api/v1/requests?status=&period=&offset=&limit=. Administrators only.
func (h *Handlers) List(c *fiber.Ctx) error {
	var f reqsvc.ListFilter
	if s := c.Query("status"); s != "" {
		st := domain.RequestStatus(s)
		f.Status = &st
	}
	if p := c.Query("period"); p != "" {
		f.Period = &p
	}
	var err error
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		return response.Error(c, "offset must be a number", fiber.StatusBadRequest, nil)
	}
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		return response.Error(c, "limit must be a number", fiber.StatusBadRequest, nil)
	}
	list, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests fetched successfully", list, fiber.Map{
		"count":  len(list),
		"offset": f.Offset,
		"limit":  f.Limit,
	})
}

func intQuery(c *fiber.Ctx, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
