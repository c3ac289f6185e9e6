package search

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-console/internal/domain/clinic"
	"vet-console/internal/domain/collection"
	"vet-console/internal/domain/entity"
	"vet-console/internal/ports/resources"
)

// -------------------------
// Test client (in-memory)
// -------------------------

type searchCall struct {
	kind    entity.Kind
	variant string
	params  map[string]string
}

type testClient struct {
	mu       sync.Mutex
	list     map[entity.Kind][]entity.Record
	results  []entity.Record
	err      error
	searches []searchCall
	lists    int
}

func (c *testClient) List(_ context.Context, kind entity.Kind) ([]entity.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists++
	if c.err != nil {
		return nil, c.err
	}
	return c.list[kind], nil
}

func (c *testClient) Search(_ context.Context, kind entity.Kind, variant string, params map[string]string) ([]entity.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches = append(c.searches, searchCall{kind: kind, variant: variant, params: params})
	if c.err != nil {
		return nil, c.err
	}
	return c.results, nil
}

func (c *testClient) Create(context.Context, entity.Kind, entity.Draft) (entity.Record, error) {
	return nil, nil
}

func (c *testClient) Update(context.Context, entity.Kind, string, entity.Draft) (entity.Record, error) {
	return nil, nil
}

func (c *testClient) Delete(context.Context, entity.Kind, string) error {
	return nil
}

func newDispatcher(t *testing.T, c *testClient) (*Dispatcher, *collection.Cache) {
	t.Helper()
	reg, err := clinic.NewRegistry()
	require.NoError(t, err)
	cache := collection.New()
	return NewDispatcher(c, cache, reg), cache
}

func TestSearch_ReplacesCollectionAndSetsFilter(t *testing.T) {
	c := &testClient{results: []entity.Record{{"id": "40"}, {"id": "41"}}}
	d, cache := newDispatcher(t, c)

	applied, err := d.Search(context.Background(), clinic.KindAppointment, clinic.SearchAppointmentByDoctorRange, map[string]string{
		"id": " 3 ", "startDate": "2024-01-01", "endDate": "2024-01-31",
	})
	require.NoError(t, err)
	assert.True(t, applied)

	require.Len(t, c.searches, 1)
	assert.Equal(t, map[string]string{"id": "3", "startDate": "2024-01-01", "endDate": "2024-01-31"}, c.searches[0].params)

	snap := cache.Get(clinic.KindAppointment)
	assert.Len(t, snap.Records, 2)
	require.NotNil(t, snap.Filter)
	assert.Equal(t, clinic.SearchAppointmentByDoctorRange, snap.Filter.Variant)
}

func TestSearch_LocalValidation(t *testing.T) {
	cases := []struct {
		name    string
		kind    entity.Kind
		variant string
		params  map[string]string
	}{
		{"unknown variant", clinic.KindCustomer, "by-phone", map[string]string{"phone": "1"}},
		{"missing name", clinic.KindCustomer, clinic.SearchCustomerByName, map[string]string{"name": "  "}},
		{"missing related id", clinic.KindVaccination, clinic.SearchVaccinationByAnimal, nil},
		{"missing end", clinic.KindVaccination, clinic.SearchVaccinationByDateRange, map[string]string{"startDate": "2024-01-01"}},
		{"inverted range", clinic.KindAppointment, clinic.SearchAppointmentByAnimalRange, map[string]string{"id": "9", "startDate": "2024-02-01", "endDate": "2024-01-01"}},
	}

	for _, tc := range cases {
		c := &testClient{}
		d, cache := newDispatcher(t, c)

		_, err := d.Search(context.Background(), tc.kind, tc.variant, tc.params)
		assert.ErrorIs(t, err, resources.ErrSearchFailed, tc.name)
		assert.ErrorIs(t, err, entity.ErrInvalidInput, tc.name)
		assert.Empty(t, c.searches, tc.name)
		assert.False(t, cache.Get(tc.kind).Loaded, tc.name)
	}
}

func TestValidate_UnparseableDatesPassThrough(t *testing.T) {
	_, clean, err := Validate(clinic.Vaccination(), clinic.SearchVaccinationByDateRange, map[string]string{
		"startDate": "2024-02-01T00:00", "endDate": "2024-01-01T00:00",
	})
	require.NoError(t, err)
	assert.Len(t, clean, 2)
}

func TestSearch_FailureLeavesCacheIntact(t *testing.T) {
	c := &testClient{list: map[entity.Kind][]entity.Record{clinic.KindCustomer: {{"id": "1"}, {"id": "2"}}}}
	d, cache := newDispatcher(t, c)
	_, err := d.ShowAll(context.Background(), clinic.KindCustomer)
	require.NoError(t, err)

	c.err = resources.Fail(resources.OpSearch, clinic.Customer(), "", 500, nil)
	_, err = d.Search(context.Background(), clinic.KindCustomer, clinic.SearchCustomerByName, map[string]string{"name": "Ana"})
	assert.ErrorIs(t, err, resources.ErrSearchFailed)
	assert.Len(t, cache.Records(clinic.KindCustomer), 2)
	assert.Nil(t, cache.Get(clinic.KindCustomer).Filter)
}

func TestShowAll_ClearsFilter(t *testing.T) {
	c := &testClient{
		list:    map[entity.Kind][]entity.Record{clinic.KindAnimal: {{"id": "1"}, {"id": "2"}, {"id": "3"}}},
		results: []entity.Record{{"id": "2"}},
	}
	d, cache := newDispatcher(t, c)

	_, err := d.Search(context.Background(), clinic.KindAnimal, clinic.SearchAnimalByCustomer, map[string]string{"customerName": "Ana"})
	require.NoError(t, err)
	assert.Len(t, cache.Records(clinic.KindAnimal), 1)

	applied, err := d.ShowAll(context.Background(), clinic.KindAnimal)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, cache.Records(clinic.KindAnimal), 3)
	assert.Nil(t, cache.Get(clinic.KindAnimal).Filter)
	assert.Equal(t, 1, c.lists)
}
