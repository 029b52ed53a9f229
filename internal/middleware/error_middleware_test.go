package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not a field officer is forbidden", apperrors.ErrNotAFieldOfficer, http.StatusForbidden, "AUTH_005"},
		{"unknown status value is a validation failure", apperrors.ErrInvalidStatus, http.StatusBadRequest, "VAL_001"},
		{"illegal transition conflicts", apperrors.ErrInvalidTransition, http.StatusConflict, "BIZ_001"},
		{"sponsorship gate has its own code", apperrors.ErrSponsorshipRequired, http.StatusForbidden, "BIZ_004"},
		{"incomplete documents conflict", apperrors.ErrIncompleteDocuments, http.StatusConflict, "BIZ_002"},
		{"insufficient funds conflict", apperrors.ErrInsufficientFunds, http.StatusConflict, "BIZ_003"},
		{"unknown id is not found", apperrors.ErrApplicationNotFound, http.StatusNotFound, "RES_001"},
		{"permission denied is forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, "AUTH_005"},
		{"unexpected errors stay internal", assert.AnError, http.StatusInternalServerError, "SRV_001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}
