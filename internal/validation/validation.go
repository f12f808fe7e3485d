// Package validation configures gin's validator and turns binding failures into the
// single-violation messages the API returns.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Register makes the validator report json (falling back to form) field names.
func Register() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(fieldName)
		}
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.Split(f.Tag.Get(tag), ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Message describes the first problem in err.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0])
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%q must be %s", typeErr.Field, typeName(typeErr.Type))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "request body must be valid JSON"
	}
	if errors.Is(err, io.EOF) {
		return "request body is required"
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return fmt.Sprintf("%q is not a valid number", numErr.Num)
	}
	return err.Error()
}

func fieldMessage(fe validator.FieldError) string {
	name := fieldPath(fe)
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", name)
	case "email":
		return fmt.Sprintf("%q must be a valid email", name)
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%q length must be at least %s characters long", name, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%q must contain at least %s items", name, param)
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", name, param)
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", name, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%q must contain less than or equal to %s items", name, param)
		}
		return fmt.Sprintf("%q must be less than or equal to %s", name, param)
	case "gt":
		if param == "0" {
			return fmt.Sprintf("%q must be a positive number", name)
		}
		return fmt.Sprintf("%q must be greater than %s", name, param)
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", name, param)
	case "lte":
		return fmt.Sprintf("%q must be less than or equal to %s", name, param)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", name, param)
	case "url":
		return fmt.Sprintf("%q must be a valid uri", name)
	}
	return fmt.Sprintf("%q failed on the %q rule", name, fe.Tag())
}

// fieldPath drops the root struct name from the namespace so nested fields read
// "productDetails[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Ptr:
		return typeName(t.Elem())
	}
	return "an object"
}
