package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators 向 gin 的 validator 注册自定义规则
//   - 错误字段名使用 json tag
//   - decimal.Decimal 按字符串参与校验，dmin/dmax 做精确比较
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		if err := v.RegisterValidation("dmin", decimalMin); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("dmax", decimalMax)
	})
	return registerErr
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalCompare(fl validator.FieldLevel) (int, bool) {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return 0, false
	}
	bound, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return 0, false
	}
	return value.Cmp(bound), true
}

func decimalMin(fl validator.FieldLevel) bool {
	cmp, ok := decimalCompare(fl)
	return ok && cmp >= 0
}

func decimalMax(fl validator.FieldLevel) bool {
	cmp, ok := decimalCompare(fl)
	return ok && cmp <= 0
}

// FieldErrors 把绑定错误转换为 字段 -> 提示；非字段错误返回 false
func FieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return fields, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: "Incorrect type."}, true
	}
	return nil, false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "gte", "dmin":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte", "dmax":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "uuid":
		return "Must be a valid UUID."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	default:
		return "Invalid value."
	}
}
