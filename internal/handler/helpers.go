package handler

import (
	"net/http"
	"reflect"

	"github.com/iatechsabana/cotecmar/internal/apierror"
	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is presented to the validator as float64 so numeric
	// tags (min=0, required) work on hour fields without panicking.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// estado_avance: the closed set of record states. The values carry
	// spaces ("En progreso"), which oneof cannot express, so the enum is
	// checked here against the model. Empty passes; it defaults later.
	_ = validate.RegisterValidation("estado_avance", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || model.EstadoAvance(s).Valida()
	})
}

// bindAndValidate decodes the JSON body and runs the validator tags,
// including the custom enum checks registered above. On failure it writes
// the error envelope and returns false; the caller must not write anything
// else.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}
