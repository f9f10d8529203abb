// Package validator 封装 go-playground/validator：注册定价领域的自定义规则，并把校验失败转换为业务错误。
package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/wyfcoding/optionpricing/xerrors"
)

var (
	once     sync.Once
	instance *govalidator.Validate
)

// Default 返回共享的校验器实例。字段名取 json 标签，并注册了 finite 规则。
func Default() *govalidator.Validate {
	once.Do(func() {
		v := govalidator.New(govalidator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("finite", isFinite); err != nil {
			panic(err)
		}
		instance = v
	})
	return instance
}

// isFinite 浮点字段不能是 NaN 或 ±Inf，其他类型视为通过。
func isFinite(fl govalidator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		x := f.Float()
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	default:
		return true
	}
}

// Struct 校验结构体，失败时以 ErrInvalidInput 为模板逐字段说明原因，
// Context 中的 field 为第一个失败的字段名。
func Struct(s any) error {
	err := Default().Struct(s)
	if err == nil {
		return nil
	}

	var verrs govalidator.ValidationErrors
	if !errors.As(err, &verrs) {
		return xerrors.WrapInternal(err, "validate struct")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, Describe(fe))
	}
	return xerrors.Detailed(xerrors.ErrInvalidInput, "%s", strings.Join(msgs, "; ")).
		WithContext("field", verrs[0].Field())
}

// Describe 把单个字段的校验失败转换为可读文本。
func Describe(fe govalidator.FieldError) string {
	switch fe.Tag() {
	case "finite":
		return fmt.Sprintf("%s must be finite, got %v", fe.Field(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
