package models

import "errors"

var (
	ErrUnknownReport      = errors.New("unknown report code")
	ErrUnknownAction      = errors.New("unknown action type")
	ErrItemNotFound       = errors.New("item not found")
	ErrHeaderNotMarkable  = errors.New("section header items cannot be marked")
	ErrResetNotConfirmed  = errors.New("reset requires explicit confirmation")
	ErrInvalidStatus      = errors.New("invalid compliance status")
	ErrInvalidStage       = errors.New("invalid stage")
	ErrInvalidEmissionKey = errors.New("invalid emission field")
)
