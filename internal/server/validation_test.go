package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"required,oneof=coach student"`
}

func TestValidateStruct(t *testing.T) {
	valid := signupInput{Email: "sam@example.com", Password: "password123", Role: "student"}
	assert.Empty(t, ValidateStruct(valid))

	invalid := signupInput{Email: "not-an-email", Password: "short", Role: "admin"}
	errs := ValidateStruct(invalid)
	require.Len(t, errs, 3)

	messages := make(map[string]string)
	for _, e := range errs {
		messages[e.Field] = e.Message
	}
	assert.Equal(t, "Email must be a valid email address", messages["Email"])
	assert.Equal(t, "Password must be at least 8", messages["Password"])
	assert.Equal(t, "Role must be one of: coach student", messages["Role"])
}

func TestRespondWithValidationErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		RespondWithValidationErrors(c, []ValidationError{
			{Field: "Email", Tag: "email", Message: "Email must be a valid email address"},
		})
	})

	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
}
