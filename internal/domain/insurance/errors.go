package insurance

import "errors"

var (
	ErrRatesNotFound         = errors.New("insurance rates not found")
	ErrContributionsNotFound = errors.New("insurance contributions not found")
	ErrMultipleActivities    = errors.New("more than one active economic activity")
	ErrAmbiguousThreshold    = errors.New("ambiguous insurance threshold")
)
