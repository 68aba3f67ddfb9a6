package httperr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
}

func bindAndReport(t *testing.T, body string) (int, HTTPError) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req signupRequest
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)
	Validation(c, err)

	var out HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func TestValidationReportsJSONFieldNames(t *testing.T) {
	status, out := bindAndReport(t, `{"username":"alice","password":"123","email":"nope"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", out.Code)
	require.Len(t, out.Errors, 2)

	byField := map[string]FieldError{}
	for _, fe := range out.Errors {
		byField[fe.Field] = fe
	}
	assert.Equal(t, "min", byField["password"].Rule)
	assert.Equal(t, "email", byField["email"].Rule)
}

func TestValidationMalformedBody(t *testing.T) {
	status, out := bindAndReport(t, `{"username":`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", out.Code)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "body", out.Errors[0].Field)
}

func TestBusinessCode(t *testing.T) {
	err := ErrBusiness("booking_not_found")

	code, ok := Code(err)
	assert.True(t, ok)
	assert.Equal(t, "booking_not_found", code)
	assert.True(t, IsBusiness(err, "booking_not_found"))
	assert.False(t, IsBusiness(err, "other"))

	_, ok = Code(assert.AnError)
	assert.False(t, ok)
}
