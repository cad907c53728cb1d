package forecast

import "errors"

var (
	ErrRevisionConflict   = errors.New("model state was modified concurrently")
	ErrTrainingInProgress = errors.New("model training already in progress")
)
