package domain

import "errors"

var (
	// ErrPlanNotFound is returned when an action plan is not found
	ErrPlanNotFound = errors.New("action plan not found")

	// ErrPlanAlreadyApproved is returned when approving a plan a second time
	ErrPlanAlreadyApproved = errors.New("action plan already approved")

	// ErrPlanAlreadyExported is returned when exporting a plan a second time
	ErrPlanAlreadyExported = errors.New("action plan already exported")

	// ErrUnknownStrategy is returned when a recommendation request names an unknown strategy
	ErrUnknownStrategy = errors.New("unknown reallocation strategy")
)
