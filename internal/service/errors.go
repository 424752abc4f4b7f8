package service

import (
	"errors"

	"sales_arena/internal/repository"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInsufficientFunds    = errors.New("insufficient points")
	ErrInsufficientCrystals = errors.New("insufficient crystals")
	ErrInsufficientTreasury = errors.New("insufficient treasury balance")
	ErrOutOfStock           = errors.New("item out of stock")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidStage         = errors.New("stage not allowed for role")
	ErrStageAlreadyVerified = errors.New("stage already verified")
	ErrAlreadyMember        = errors.New("user is already a member of this team")
	ErrNotMember            = errors.New("not a member of this team")
	ErrNotInTeam            = errors.New("user is not in a team")
	ErrValidation           = errors.New("validation failed")
	ErrSelfAction           = errors.New("action not allowed on yourself")
	ErrDuplicate            = errors.New("already exists")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// translate maps repository sentinels onto service ones.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicate
	}
	return err
}
