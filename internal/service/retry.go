package service

import (
	"errors"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// retryOnConflict runs op and, if it fails with models.ErrConflict, runs it once more.
func retryOnConflict[T any](op func() (T, error)) (T, error) {
	v, err := op()
	if errors.Is(err, models.ErrConflict) {
		return op()
	}

	return v, err
}
