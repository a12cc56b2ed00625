package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// QueryFromValues reads a dashboard query from URL parameters. A missing products or
// regions parameter selects every value; a present but empty one selects none.
// Repeated and comma separated values are both accepted.
func QueryFromValues(values url.Values) (models.DashboardQuery, error) {
	q := models.DashboardQuery{
		Start:    strings.TrimSpace(values.Get("start")),
		End:      strings.TrimSpace(values.Get("end")),
		Products: selection(values, "products"),
		Regions:  selection(values, "regions"),
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return models.DashboardQuery{}, utils.NewInvalidError("api.query", "validation failed", map[string]string{"limit": "must be numeric"})
		}
		q.Limit = limit
	}

	if err := validateQuery(q); err != nil {
		return models.DashboardQuery{}, err
	}
	return q, nil
}

// QueryFromJSON decodes and validates a dashboard query body. Unknown fields are rejected.
func QueryFromJSON(data []byte) (models.DashboardQuery, error) {
	var q models.DashboardQuery
	if len(bytes.TrimSpace(data)) == 0 {
		return q, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&q); err != nil {
		return models.DashboardQuery{}, utils.NewInvalidError("api.decode", "invalid request body", map[string]string{"body": err.Error()})
	}
	if err := validateQuery(q); err != nil {
		return models.DashboardQuery{}, err
	}
	return q, nil
}

func decodeBody(r *http.Request) (models.DashboardQuery, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return models.DashboardQuery{}, utils.NewAppError("api.decode", "read request body", err)
	}
	if len(data) > maxBodyBytes {
		return models.DashboardQuery{}, utils.NewInvalidError("api.decode", "request body too large", nil)
	}
	return QueryFromJSON(data)
}

func selection(values url.Values, key string) []string {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validateQuery(q models.DashboardQuery) error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return utils.NewAppError("api.validate", "validation failed", err)
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldKey(fieldErr)] = validationMessage(fieldErr)
	}
	return utils.NewInvalidError("api.validate", "validation failed", details)
}

// fieldKey collapses products[2] style namespaces onto the top level field.
func fieldKey(fe validator.FieldError) string {
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i > 0 {
		return field[:i]
	}
	return field
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not contain empty values"
	case "datetime":
		return fmt.Sprintf("must be a date formatted as %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return "is invalid"
}
