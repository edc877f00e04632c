package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type employeeForm struct {
	NIP   string   `json:"nip" binding:"required,nip"`
	Name  string   `json:"name" binding:"required,max=10"`
	Email string   `json:"email" binding:"omitempty,email"`
	Lines []string `json:"lines" binding:"required,min=1"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/employees", func(c *gin.Context) {
		var req employeeForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.Name))
	})

	t.Run("reports every failing field by json name", func(t *testing.T) {
		body := strings.NewReader(`{"nip":"12345","name":"Budi Santoso Wijaya","email":"nope","lines":[]}`)
		req := httptest.NewRequest(http.MethodPost, "/employees", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "Must be an 18-digit NIP", messages["nip"])
		assert.Equal(t, "Must be at most 10 characters", messages["name"])
		assert.Equal(t, "Invalid email format", messages["email"])
		assert.Equal(t, "Must be at least 1", messages["lines"])
	})

	t.Run("accepts a valid body", func(t *testing.T) {
		body := strings.NewReader(`{"nip":"198501012010011001","name":"Budi","lines":["a"]}`)
		req := httptest.NewRequest(http.MethodPost, "/employees", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed json has no details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, resp.Error.Details)
	})
}

func TestGetValidationMessage_NonStringKinds(t *testing.T) {
	type form struct {
		Quantity int             `binding:"gt=0"`
		Items    []int           `binding:"len=2"`
		Price    decimal.Decimal `binding:"gt=0"`
	}
	SetupValidator()

	err := binding.Validator.ValidateStruct(&form{Items: []int{1}, Price: decimal.NewFromInt(-5)})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	got := map[string]string{}
	for _, e := range verrs {
		got[e.Field()] = getValidationMessage(e)
	}
	assert.Equal(t, "Must be greater than 0", got["Quantity"])
	assert.Equal(t, "Must contain exactly 2 items", got["Items"])
	assert.Equal(t, "Must be greater than 0", got["Price"])
}

func TestValidateNIP(t *testing.T) {
	type form struct {
		NIP string `binding:"nip"`
	}
	SetupValidator()

	tests := []struct {
		nip   string
		valid bool
	}{
		{"198501012010011001", true},
		{"19850101201001100", false},
		{"19850101201001100a", false},
		{"1985 0101 2010 0110", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.nip, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&form{NIP: tt.nip})
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestDecimalRequired(t *testing.T) {
	type line struct {
		Quantity decimal.Decimal `binding:"required,gt=0"`
	}
	SetupValidator()

	assert.Error(t, binding.Validator.ValidateStruct(&line{}))
	assert.Error(t, binding.Validator.ValidateStruct(&line{Quantity: decimal.RequireFromString("-0.5")}))
	assert.NoError(t, binding.Validator.ValidateStruct(&line{Quantity: decimal.RequireFromString("0.25")}))
}
