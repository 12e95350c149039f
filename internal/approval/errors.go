package approval

import "errors"

var (
	ErrEmptySecret  = errors.New("approval: token secret is empty")
	ErrInvalidParam = errors.New("approval: invalid link parameter")
)
