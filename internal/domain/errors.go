package domain

import "errors"

var (
	ErrAlreadyExecuted        = errors.New("Lottery already executed for this period")
	ErrSlotConflict           = errors.New("Vehicle slot is already bound")
	ErrInvalidTransition      = errors.New("Request is not pending")
	ErrDuplicateActiveRequest = errors.New("Resident already has an active request for this period and vehicle type")
	ErrPeriodClosed           = errors.New("The lottery for this period has already been drawn")

	ErrInvalidPeriod      = errors.New("Invalid period (expected YYYY-MM)")
	ErrInvalidVehicleType = errors.New("Invalid vehicle type")
	ErrInvalidCapacity    = errors.New("Capacity must be zero or positive")
	ErrInvalidWeights     = errors.New("Invalid ranking weights")
	ErrInvalidStatus      = errors.New("Invalid request status")
	ErrInvalidInput       = errors.New("Invalid input")

	ErrRequestNotFound  = errors.New("Request not found")
	ErrResidentNotFound = errors.New("Resident not found")
	ErrSlotNotFound     = errors.New("Vehicle slot not found")
	ErrLotteryNotFound  = errors.New("Lottery not found for this period")

	ErrLockTimeout = errors.New("Timed out waiting for the lottery lock")
)
