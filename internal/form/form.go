// Package form holds the state of a test definition while it is being
// edited, either through the web form or the interactive CLI.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gkobilansky/abreport/internal/stats"
	"github.com/gkobilansky/abreport/internal/store"
)

// DateLayout is the wire format of date inputs.
const DateLayout = "2006-01-02"

// AudienceOptions are the audience tags offered by the form.
var AudienceOptions = []string{
	"Desktop Users",
	"Mobile Users",
	"New Visitors",
	"Returning Visitors",
	"US Traffic",
	"EU Traffic",
}

// VariantField names an editable field of a variant.
type VariantField string

const (
	FieldName        VariantField = "name"
	FieldDescription VariantField = "description"
	FieldImageURL    VariantField = "image_url"
)

// Draft is an in-progress test definition. The zero value is usable but
// New returns the defaults the form starts with.
type Draft struct {
	Name           string
	Description    string
	TestURL        string
	StartDate      time.Time
	EndDate        time.Time
	DataSource     store.DataSource
	TargetAudience []string
	TrafficSplit   store.TrafficSplit
	Variants       store.Variants
}

func New() *Draft {
	return &Draft{
		DataSource:     store.DataSourceManual,
		TargetAudience: []string{},
		TrafficSplit:   stats.SplitFor(50),
		Variants: store.Variants{
			A: store.Variant{Name: "Control"},
			B: store.Variant{Name: "Variation"},
		},
	}
}

func (d *Draft) SetName(name string)               { d.Name = name }
func (d *Draft) SetDescription(description string) { d.Description = description }
func (d *Draft) SetTestURL(u string)               { d.TestURL = u }
func (d *Draft) SetStartDate(t time.Time)          { d.StartDate = t }
func (d *Draft) SetEndDate(t time.Time)            { d.EndDate = t }
func (d *Draft) SetDataSource(s store.DataSource)  { d.DataSource = s }

// SetAudience replaces the selected audience tags, dropping duplicates and
// keeping first-seen order.
func (d *Draft) SetAudience(tags []string) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	d.TargetAudience = out
}

// ToggleAudience adds tag if absent and removes it otherwise.
func (d *Draft) ToggleAudience(tag string) {
	if i := slices.Index(d.TargetAudience, tag); i >= 0 {
		d.TargetAudience = slices.Delete(d.TargetAudience, i, i+1)
		return
	}
	d.TargetAudience = append(d.TargetAudience, tag)
}

// SetTrafficSplit moves the slider: variant B always gets the remainder.
func (d *Draft) SetTrafficSplit(variantA int) {
	d.TrafficSplit = stats.SplitFor(variantA)
}

func (d *Draft) SetVariantField(id store.VariantID, field VariantField, value string) error {
	var v *store.Variant
	switch id {
	case store.VariantA:
		v = &d.Variants.A
	case store.VariantB:
		v = &d.Variants.B
	default:
		return fmt.Errorf("unknown variant %q", id)
	}

	switch field {
	case FieldName:
		v.Name = value
	case FieldDescription:
		v.Description = value
	case FieldImageURL:
		v.ImageURL = value
	default:
		return fmt.Errorf("unknown variant field %q", field)
	}
	return nil
}

// Decode applies submitted HTML form values. Fields absent from values keep
// their current state. Unparseable dates and split values are reported as a
// *store.ValidationError.
func (d *Draft) Decode(values url.Values) error {
	verr := &store.ValidationError{}

	setString := func(key string, set func(string)) {
		if values.Has(key) {
			set(strings.TrimSpace(values.Get(key)))
		}
	}

	setString("name", d.SetName)
	setString("description", d.SetDescription)
	setString("test_url", d.SetTestURL)
	setString("data_source", func(s string) { d.SetDataSource(store.DataSource(s)) })

	for _, key := range []string{"start_date", "end_date"} {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			verr.Fields = append(verr.Fields, store.FieldError{Field: key, Message: "must be a date (YYYY-MM-DD)"})
			continue
		}
		if key == "start_date" {
			d.SetStartDate(t)
		} else {
			d.SetEndDate(t)
		}
	}

	if values.Has("target_audience") {
		d.SetAudience(values["target_audience"])
	}

	if raw := strings.TrimSpace(values.Get("split_a")); raw != "" {
		a, err := strconv.Atoi(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, store.FieldError{Field: "traffic_split", Message: "must be a whole number"})
		} else {
			d.SetTrafficSplit(a)
		}
	}

	for _, id := range []store.VariantID{store.VariantA, store.VariantB} {
		for _, field := range []VariantField{FieldName, FieldDescription, FieldImageURL} {
			key := "variant_" + strings.ToLower(string(id)) + "_" + string(field)
			if values.Has(key) {
				if err := d.SetVariantField(id, field, strings.TrimSpace(values.Get(key))); err != nil {
					return err
				}
			}
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Values is the inverse of Decode, used to repopulate the form.
func (d *Draft) Values() url.Values {
	values := url.Values{}
	values.Set("name", d.Name)
	values.Set("description", d.Description)
	values.Set("test_url", d.TestURL)
	values.Set("data_source", string(d.DataSource))
	if !d.StartDate.IsZero() {
		values.Set("start_date", d.StartDate.Format(DateLayout))
	}
	if !d.EndDate.IsZero() {
		values.Set("end_date", d.EndDate.Format(DateLayout))
	}
	for _, tag := range d.TargetAudience {
		values.Add("target_audience", tag)
	}
	values.Set("split_a", strconv.Itoa(d.TrafficSplit.VariantA))
	values.Set("variant_a_name", d.Variants.A.Name)
	values.Set("variant_a_description", d.Variants.A.Description)
	values.Set("variant_a_image_url", d.Variants.A.ImageURL)
	values.Set("variant_b_name", d.Variants.B.Name)
	values.Set("variant_b_description", d.Variants.B.Description)
	values.Set("variant_b_image_url", d.Variants.B.ImageURL)
	return values
}

// Build turns the draft into a test with the given id and timestamps and
// validates it. The draft's fields are copied without transformation.
func (d *Draft) Build(id string, now time.Time) (*store.Test, error) {
	test := &store.Test{
		ID:             id,
		Name:           d.Name,
		Description:    d.Description,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		TestURL:        d.TestURL,
		DataSource:     d.DataSource,
		TargetAudience: slices.Clone(d.TargetAudience),
		TrafficSplit:   d.TrafficSplit,
		Variants:       d.Variants,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	verr := d.missingDates()
	if err := store.Validate(test); err != nil {
		var fieldErrs *store.ValidationError
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		verr.Fields = append(verr.Fields, fieldErrs.Fields...)
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return test, nil
}

// FromTest loads an existing definition, as when duplicating a test.
func FromTest(t *store.Test) *Draft {
	return &Draft{
		Name:           t.Name,
		Description:    t.Description,
		TestURL:        t.TestURL,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		DataSource:     t.DataSource,
		TargetAudience: slices.Clone(t.TargetAudience),
		TrafficSplit:   t.TrafficSplit,
		Variants:       t.Variants,
	}
}

// missingDates reports unset dates, which store.Validate cannot tell apart
// from a deliberately open window.
func (d *Draft) missingDates() *store.ValidationError {
	verr := &store.ValidationError{}
	if d.StartDate.IsZero() {
		verr.Fields = append(verr.Fields, store.FieldError{Field: "start_date", Message: "is required"})
	}
	if d.EndDate.IsZero() {
		verr.Fields = append(verr.Fields, store.FieldError{Field: "end_date", Message: "is required"})
	}
	return verr
}
