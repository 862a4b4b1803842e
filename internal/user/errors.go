package user

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateCitizenID = errors.New("citizen id already exists")
)
