package relation_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-console/internal/domain/clinic"
	"vet-console/internal/domain/collection"
	"vet-console/internal/domain/entity"
	"vet-console/internal/domain/relation"
)

func setup(t *testing.T) (*relation.Resolver, *collection.Cache) {
	t.Helper()
	reg, err := clinic.NewRegistry()
	require.NoError(t, err)
	cache := collection.New()
	return relation.NewResolver(reg, cache), cache
}

func load(c *collection.Cache, kind entity.Kind, rs ...entity.Record) {
	c.Commit(c.Begin(kind), rs, nil)
}

func TestRows_ResolvesNestedRef(t *testing.T) {
	r, cache := setup(t)
	load(cache, clinic.KindCustomer, entity.Record{"id": json.Number("7"), "name": "Ana"})

	rows := r.Rows(clinic.KindAnimal, []entity.Record{
		{"id": json.Number("1"), "name": "Luna", "customer": map[string]any{"id": json.Number("7")}},
		{"id": json.Number("2"), "name": "Tom", "customer": map[string]any{"id": json.Number("8")}},
		{"id": json.Number("3"), "name": "Rex", "customer": nil},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].ID)
	assert.Equal(t, "Ana", rows[0].Labels["customer"])
	assert.Equal(t, "Unknown Customer", rows[1].Labels["customer"])
	assert.Equal(t, "Unknown Customer", rows[2].Labels["customer"])
}

func TestRows_FlatRefAndUnloadedCollection(t *testing.T) {
	r, cache := setup(t)

	slots := []entity.Record{{"id": "1", "workDay": "2024-03-01", "doctorId": json.Number("3")}}
	rows := r.Rows(clinic.KindAvailableDate, slots)
	assert.Equal(t, "Unknown Doctor", rows[0].Labels["doctorId"])

	load(cache, clinic.KindDoctor, entity.Record{"id": json.Number("3"), "name": "Dr. Vega"})
	rows = r.Rows(clinic.KindAvailableDate, slots)
	assert.Equal(t, "Dr. Vega", rows[0].Labels["doctorId"])
}

func TestRows_DerivedChain(t *testing.T) {
	r, cache := setup(t)
	load(cache, clinic.KindDoctor, entity.Record{"id": json.Number("3"), "name": "Dr. Vega"})
	load(cache, clinic.KindAnimal, entity.Record{"id": json.Number("9"), "name": "Luna", "species": "cat"})
	load(cache, clinic.KindAppointment, entity.Record{
		"id":              json.Number("40"),
		"appointmentDate": "2024-01-05T09:00:00",
		"doctor":          map[string]any{"id": json.Number("3")},
		"animal":          map[string]any{"id": json.Number("9")},
	})

	rows := r.Rows(clinic.KindReport, []entity.Record{
		{"id": "1", "title": "Checkup", "appointmentId": json.Number("40")},
		{"id": "2", "title": "Orphan", "appointmentId": json.Number("41")},
	})

	assert.Equal(t, "Dr. Vega", rows[0].Labels["doctor"])
	assert.Equal(t, "Luna (cat)", rows[0].Labels["animal"])
	assert.Equal(t, "2024-01-05T09:00:00 - Unknown Doctor - Unknown Animal", rows[0].Labels["appointmentId"])

	assert.Equal(t, "Unknown Appointment", rows[1].Labels["appointmentId"])
	assert.Equal(t, "Unknown Doctor", rows[1].Labels["doctor"])
	assert.Equal(t, "Unknown Animal", rows[1].Labels["animal"])
}

func TestRows_DerivedChainMissingLeaf(t *testing.T) {
	r, cache := setup(t)
	load(cache, clinic.KindAppointment, entity.Record{
		"id":     "40",
		"doctor": map[string]any{"id": "3"},
	})

	rows := r.Rows(clinic.KindReport, []entity.Record{{"id": "1", "appointmentId": "40"}})
	assert.Equal(t, "Unknown Doctor", rows[0].Labels["doctor"])
	assert.Equal(t, "Unknown Animal", rows[0].Labels["animal"])
}

func TestRows_UnknownKindHasNoLabels(t *testing.T) {
	r, _ := setup(t)
	rows := r.Rows("invoices", []entity.Record{{"id": "1"}})
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Labels)
}

func TestOptions(t *testing.T) {
	r, cache := setup(t)
	assert.Empty(t, r.Options(clinic.KindCustomer))

	load(cache, clinic.KindAnimal,
		entity.Record{"id": json.Number("9"), "name": "Luna", "species": "cat"},
		entity.Record{"id": json.Number("4"), "name": "Rex"},
	)
	assert.Equal(t, []relation.Option{
		{ID: "9", Label: "Luna (cat)"},
		{ID: "4", Label: "Rex"},
	}, r.Options(clinic.KindAnimal))
}
