package clinic

import (
	"encoding/json"
	"testing"

	"vet-console/internal/domain/entity"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("expected valid registry, got %v", err)
	}

	want := []entity.Kind{KindCustomer, KindAnimal, KindDoctor, KindAvailableDate, KindAppointment, KindVaccination, KindReport}
	got := reg.Kinds()
	if len(got) != len(want) {
		t.Fatalf("expected %d kinds, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kind %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLabels(t *testing.T) {
	cases := []struct {
		name   string
		schema entity.Schema
		rec    entity.Record
		want   string
	}{
		{"animal with species", Animal(), entity.Record{"name": "Luna", "species": "cat"}, "Luna (cat)"},
		{"animal without species", Animal(), entity.Record{"name": "Luna"}, "Luna"},
		{"vaccination", Vaccination(), entity.Record{"name": "Rabies", "code": "R1"}, "Rabies (R1)"},
		{"customer falls back to name", Customer(), entity.Record{"name": "Ana"}, "Ana"},
		{"available date", AvailableDate(), entity.Record{"workDay": "2024-01-05"}, "2024-01-05"},
		{
			"appointment embedded refs",
			Appointment(),
			entity.Record{
				"appointmentDate": "2024-01-05T09:00:00",
				"doctor":          map[string]any{"id": json.Number("3"), "name": "Dr. Vega"},
				"animal":          map[string]any{"id": json.Number("9"), "name": "Luna"},
			},
			"2024-01-05T09:00:00 - Dr. Vega - Luna",
		},
		{
			"appointment missing refs",
			Appointment(),
			entity.Record{"appointmentDate": "2024-01-05T09:00:00"},
			"2024-01-05T09:00:00 - Unknown Doctor - Unknown Animal",
		},
		{"report", Report(), entity.Record{"id": json.Number("1"), "title": "Checkup"}, "Checkup"},
	}

	for _, tc := range cases {
		if got := tc.schema.DisplayLabel(tc.rec); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
