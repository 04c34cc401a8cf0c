package model

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid date", value: "2024-03-01", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "time-of-day included", value: "2024-03-01T10:00:00Z", wantErr: true},
		{name: "wrong separator", value: "2024/03/01", wantErr: true},
		{name: "month out of range", value: "2024-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestStay(t *testing.T) {
	b := &Booking{CheckInDate: "2024-01-10", CheckOutDate: "2024-01-15"}

	checkIn, checkOut, err := b.Stay()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !checkOut.After(checkIn) {
		t.Errorf("expected checkOut %v after checkIn %v", checkOut, checkIn)
	}

	b.CheckOutDate = "not-a-date"
	if _, _, err := b.Stay(); err == nil {
		t.Error("expected error for malformed checkOutDate")
	}
}

func TestBookingJSONFieldNames(t *testing.T) {
	b := Booking{
		BookingID:    "b-1",
		RoomID:       "R1",
		UserID:       "U1",
		CheckInDate:  "2024-03-01",
		CheckOutDate: "2024-03-05",
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"bookingId", "roomId", "userId", "checkInDate", "checkOutDate", "deleted"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected serialized booking to contain field %q", key)
		}
	}
	if v, ok := fields["deleted"].(bool); !ok || v {
		t.Errorf("expected deleted to serialize as boolean false, got %v", fields["deleted"])
	}
}
