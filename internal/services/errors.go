package services

import "errors"

var (
	ErrSlugTaken          = errors.New("clinic slug is already in use")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrLimitExceeded      = errors.New("plan limit exceeded")
	ErrInvalidInterval    = errors.New("billing interval must be monthly or yearly")
	ErrShiftAlreadyOpen   = errors.New("user already has an open cash shift")
	ErrShiftNotOpen       = errors.New("cash shift is not open")
	ErrAppointmentOverlap = errors.New("veterinarian already has an appointment in that slot")
	ErrSubscriptionState  = errors.New("subscription is not in a state that allows a plan change")
)
