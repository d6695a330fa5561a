package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/apierror"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/middleware"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// report json names, the ones the SPA knows
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			apierror.WithCode(apierror.CodeValidation, "JSON inválido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindOptional is bindAndValidate for bodies the client may omit.
func bindOptional(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			apierror.WithCode(apierror.CodeValidation, "JSON inválido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			apierror.WithCode(apierror.CodeValidation, "Parámetros inválidos: "+err.Error()))
		return false
	}
	return true
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeValidation, err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[fe.Field()] = msg
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, apierror.NewValidation(fields))
	return false
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeValidation, "ID inválido"))
		return 0, false
	}
	return id, true
}

func statusFor(kind service.Kind) (int, string) {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest, apierror.CodeValidation
	case service.KindConflict:
		return http.StatusBadRequest, apierror.CodeConflict
	case service.KindInUse:
		return http.StatusBadRequest, apierror.CodeInUse
	case service.KindNotFound:
		return http.StatusNotFound, apierror.CodeNotFound
	case service.KindUnauthorized:
		return http.StatusUnauthorized, apierror.CodeTokenInvalid
	case service.KindForbidden:
		return http.StatusForbidden, apierror.CodeForbidden
	default:
		return http.StatusInternalServerError, apierror.CodeInternal
	}
}

// respondError writes the envelope for a service error. The cause of a 500 is
// logged and, outside release mode, echoed in debug.
func respondError(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Msg: "Error interno del servidor", Err: err}
	}
	status, code := statusFor(se.Kind)
	if se.Code != "" {
		code = se.Code
	}
	body := apierror.WithCode(code, se.Msg)
	body.Fields = se.Fields

	if status >= http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(se.Err).
			Msg(se.Msg)
		if gin.Mode() != gin.ReleaseMode && se.Err != nil {
			body.WithDebug(se.Err.Error())
		}
	}
	c.AbortWithStatusJSON(status, body)
}
