package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bird count", models.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("load flock: %w", fmt.Errorf("%w: flock F-9", models.ErrNotFound)), http.StatusNotFound},
		{fmt.Errorf("save: %w", models.ErrVersionConflict), http.StatusConflict},
		{models.ErrInvalidState, http.StatusConflict},
		{models.ErrComputationUnavailable, http.StatusUnprocessableEntity},
		{errors.New("mongo timeout"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
