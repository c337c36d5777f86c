package types

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("сущность не найдена")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type UpstreamDependencyError struct {
	Service string
	Err     error
}

func (e *UpstreamDependencyError) Error() string {
	return fmt.Sprintf("внешний сервис %s недоступен: %v", e.Service, e.Err)
}

func (e *UpstreamDependencyError) Unwrap() error {
	return e.Err
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ошибка хранилища (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type GenerationExhaustedError struct {
	Attempts int
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("не удалось сгенерировать уникальный код за %d попыток", e.Attempts)
}
