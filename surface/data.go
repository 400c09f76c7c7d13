package surface

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Scalar is a JSON string, number, or bool held as its display text.
// null decodes to "".
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	default:
		*s = Scalar(b)
	}
	return nil
}

// MarshalJSON writes numbers and bools back bare and everything else quoted.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s == "true" || s == "false" || isNumber(string(s)) {
		return []byte(s), nil
	}
	return json.Marshal(string(s))
}

func (s Scalar) String() string { return string(s) }

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	var f float64
	return json.Unmarshal([]byte(s), &f) == nil
}

// TableData is the payload of a table surface.
type TableData struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Car is one entry of a comparison surface.
type Car struct {
	ID       Scalar   `json:"id"`
	Make     Scalar   `json:"make"`
	Model    Scalar   `json:"model"`
	Year     Scalar   `json:"year"`
	Price    Scalar   `json:"price"`
	Color    Scalar   `json:"color"`
	Type     Scalar   `json:"type"`
	Features []string `json:"features"`
	Image    Scalar   `json:"image,omitempty"`
}

// BookingContext marks one car of a comparison surface as the active
// booking target. It is also the payload of a booking-form surface.
type BookingContext struct {
	CarID Scalar `json:"carId"`
	Make  Scalar `json:"make"`
	Model Scalar `json:"model"`
	Year  Scalar `json:"year"`
	Price Scalar `json:"price"`
	Image Scalar `json:"image"`
}

// ComparisonData is the payload of a card-comparison surface.
type ComparisonData struct {
	Verdict        string          `json:"verdict,omitempty"`
	Cars           []Car           `json:"cars"`
	BookingContext *BookingContext `json:"bookingContext,omitempty"`
}

// DecodeTable decodes table data. Rows keep numbers as their JSON text.
func DecodeTable(data json.RawMessage) (TableData, error) {
	var t TableData
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&t); err != nil {
		return TableData{}, fmt.Errorf("decode table: %w", err)
	}
	return t, nil
}

// DecodeComparison decodes card-comparison data.
func DecodeComparison(data json.RawMessage) (ComparisonData, error) {
	var c ComparisonData
	if err := json.Unmarshal(data, &c); err != nil {
		return ComparisonData{}, fmt.Errorf("decode comparison: %w", err)
	}
	return c, nil
}

// DecodeBookingForm decodes booking-form data.
func DecodeBookingForm(data json.RawMessage) (BookingContext, error) {
	var b BookingContext
	if len(bytes.TrimSpace(data)) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return BookingContext{}, fmt.Errorf("decode booking form: %w", err)
	}
	return b, nil
}

// contextKeys maps car fields to bookingContext fields.
var contextKeys = [][2]string{
	{"id", "carId"},
	{"make", "make"},
	{"model", "model"},
	{"year", "year"},
	{"price", "price"},
	{"image", "image"},
}

// WithBookingContext copies every field of data and sets bookingContext
// from the car with id carID. Car values are copied as the agent sent them;
// fields the car lacks are left out. ErrCarNotFound when no car matches.
func WithBookingContext(data json.RawMessage, carID string) (json.RawMessage, error) {
	fields, err := objectFields(data)
	if err != nil {
		return nil, err
	}
	var cars []map[string]json.RawMessage
	if raw, ok := fields["cars"]; ok {
		if err := json.Unmarshal(raw, &cars); err != nil {
			return nil, fmt.Errorf("decode cars: %w", err)
		}
	}
	for _, car := range cars {
		var id Scalar
		if raw, ok := car["id"]; !ok || json.Unmarshal(raw, &id) != nil || string(id) != carID {
			continue
		}
		bc := make(map[string]json.RawMessage, len(contextKeys))
		for _, k := range contextKeys {
			if v, ok := car[k[0]]; ok {
				bc[k[1]] = v
			}
		}
		b, err := json.Marshal(bc)
		if err != nil {
			return nil, err
		}
		fields["bookingContext"] = b
		return json.Marshal(fields)
	}
	return nil, fmt.Errorf("car %s: %w", carID, ErrCarNotFound)
}

// WithoutBookingContext copies every field of data except bookingContext.
func WithoutBookingContext(data json.RawMessage) (json.RawMessage, error) {
	fields, err := objectFields(data)
	if err != nil {
		return nil, err
	}
	delete(fields, "bookingContext")
	return json.Marshal(fields)
}

func objectFields(data json.RawMessage) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("surface data is not an object: %w", err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	return fields, nil
}

// CellValue looks up a table cell by lower-cased column name, then by the
// column name as given. Missing and null values are "".
func CellValue(row map[string]any, column string) string {
	v, ok := row[strings.ToLower(column)]
	if !ok || v == nil {
		v, ok = row[column]
	}
	if !ok || v == nil {
		return ""
	}
	return scalarText(v)
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return fmt.Sprint(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
