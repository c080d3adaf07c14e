package apperr_test

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"nyumba/internal/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("Rating must be between 1 and 5"), http.StatusBadRequest},
		{apperr.Conflict("Cannot delete category with %d products", 3), http.StatusBadRequest},
		{apperr.NotFound("Order not found"), http.StatusNotFound},
		{apperr.Unauthorized("Authentication required"), http.StatusUnauthorized},
		{apperr.Forbidden("Admin access required"), http.StatusForbidden},
		{apperr.Upstream("Failed to fetch products", sql.ErrConnDone), http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, apperr.Status(tc.err), tc.err.Error())
	}
}

func TestUpstreamKeepsTaxonomyErrors(t *testing.T) {
	nf := apperr.NotFound("Tip not found")
	assert.Same(t, nf, apperr.Upstream("Failed to fetch tip", nf))
	assert.Nil(t, apperr.Upstream("x", nil))

	wrapped := apperr.Upstream("Failed to fetch tip", sql.ErrTxDone)
	assert.ErrorIs(t, wrapped, sql.ErrTxDone)
	msg, cause := apperr.Message(wrapped)
	assert.Equal(t, "Failed to fetch tip", msg)
	assert.Equal(t, sql.ErrTxDone.Error(), cause)
}

func TestWrappedKindSurvivesFmt(t *testing.T) {
	err := fmt.Errorf("create tip: %w", apperr.Conflict("A tip with this slug already exists"))
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	msg, cause := apperr.Message(err)
	assert.Equal(t, "A tip with this slug already exists", msg)
	assert.Empty(t, cause)
}
