package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so form errors line up with inputs.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks a test definition against its invariants and returns a
// *ValidationError listing every violation, or nil.
func Validate(t *Test) error {
	verr := &ValidationError{}

	if err := validate.Struct(t); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate test: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fieldPath(fe.Namespace()), describe(fe))
		}
	}

	if sum := t.TrafficSplit.VariantA + t.TrafficSplit.VariantB; sum != 100 {
		verr.add("traffic_split", fmt.Sprintf("must sum to 100, got %d", sum))
	}

	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		verr.add("end_date", "must not be before start_date")
	}

	if r := t.Results; r != nil {
		if r.VariantA.VariantID != VariantA {
			verr.add("results.variant_a.variant_id", "must be A")
		}
		if r.VariantB.VariantID != VariantB {
			verr.add("results.variant_b.variant_id", "must be B")
		}
		checkInterval(verr, "results.variant_a.confidence_interval", r.VariantA.ConfidenceInterval)
		checkInterval(verr, "results.variant_b.confidence_interval", r.VariantB.ConfidenceInterval)
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func checkInterval(verr *ValidationError, field string, ci Interval) {
	if ci.Lower > ci.Upper {
		verr.add(field, fmt.Sprintf("lower %.4f exceeds upper %.4f", ci.Lower, ci.Upper))
	}
}

// fieldPath drops the root struct name from a validator namespace:
// "Test.traffic_split.variant_a" becomes "traffic_split.variant_a".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
