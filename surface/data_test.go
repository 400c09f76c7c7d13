package surface

import (
	"encoding/json"
	"errors"
	"testing"
)

const mixedCars = `{"verdict":"v","note":{"keep":true},"cars":[
	{"id":"1","make":"A"},
	{"id":2,"make":"B","year":2024,"price":"$1"},
	{"id":"true","make":"C","model":"X"}]}`

func bookingContextOf(t *testing.T, data json.RawMessage) string {
	t.Helper()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("result is not an object: %v", err)
	}
	if string(fields["note"]) != `{"keep":true}` || string(fields["verdict"]) != `"v"` {
		t.Errorf("existing fields not copied: %s", data)
	}
	return string(fields["bookingContext"])
}

func TestWithBookingContextKeepsValueTypes(t *testing.T) {
	cases := []struct {
		carID string
		want  string
	}{
		{"1", `{"carId":"1","make":"A"}`},
		{"2", `{"carId":2,"make":"B","price":"$1","year":2024}`},
		{"true", `{"carId":"true","make":"C","model":"X"}`},
	}
	for _, c := range cases {
		data, err := WithBookingContext(json.RawMessage(mixedCars), c.carID)
		if err != nil {
			t.Fatalf("car %s: %v", c.carID, err)
		}
		if got := bookingContextOf(t, data); got != c.want {
			t.Errorf("car %s: expected %s, got %s", c.carID, c.want, got)
		}
	}
}

func TestWithBookingContextUnknownCar(t *testing.T) {
	_, err := WithBookingContext(json.RawMessage(mixedCars), "9")
	if !errors.Is(err, ErrCarNotFound) {
		t.Errorf("expected ErrCarNotFound, got %v", err)
	}
	_, err = WithBookingContext(json.RawMessage(`{"verdict":"no cars"}`), "1")
	if !errors.Is(err, ErrCarNotFound) {
		t.Errorf("expected ErrCarNotFound without cars, got %v", err)
	}
}

func TestWithoutBookingContextRoundTrip(t *testing.T) {
	data, err := WithBookingContext(json.RawMessage(mixedCars), "2")
	if err != nil {
		t.Fatal(err)
	}
	back, err := WithoutBookingContext(data)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]json.RawMessage
	json.Unmarshal(back, &fields)
	if _, ok := fields["bookingContext"]; ok {
		t.Errorf("bookingContext should be removed: %s", back)
	}
	if len(fields) != 3 {
		t.Errorf("expected verdict, note and cars, got %s", back)
	}
}
