package tasks

import "errors"

var (
	// ErrUnknownKind возвращается для задачи неизвестного типа, такие задачи не повторяются
	ErrUnknownKind = errors.New("tasks: unknown task kind")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("tasks: internal error")
)
