package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-console/internal/domain/clinic"
	"vet-console/internal/domain/entity"
)

func owner() entity.Schema {
	return entity.Schema{
		Kind:   "owners",
		Name:   "owner",
		Plural: "owners",
		Path:   "/owners",
		Fields: []entity.Field{{Key: "name", Type: entity.FieldText}},
	}
}

func pet() entity.Schema {
	return entity.Schema{
		Kind:   "pets",
		Name:   "pet",
		Plural: "pets",
		Path:   "/pets",
		Fields: []entity.Field{{Key: "name", Type: entity.FieldText}},
		Refs:   []entity.Ref{{Key: "owner", Kind: "owners", Wire: entity.WireNested}},
	}
}

func TestBuilder_Valid(t *testing.T) {
	reg, err := entity.NewBuilder().Register(owner()).Register(pet()).Build()
	require.NoError(t, err)
	assert.Equal(t, []entity.Kind{"owners", "pets"}, reg.Kinds())

	s, ok := reg.Get("pets")
	require.True(t, ok)
	assert.Equal(t, "pet", s.Name)
}

func TestBuilder_Rejects(t *testing.T) {
	badPath := owner()
	badPath.Path = "owners"

	dupKey := owner()
	dupKey.Fields = append(dupKey.Fields, entity.Field{Key: "name"})

	idKey := owner()
	idKey.Fields = []entity.Field{{Key: "id"}}

	dupSearch := owner()
	dupSearch.Searches = []entity.SearchVariant{{Name: "x", Path: "/a"}, {Name: "x", Path: "/b"}}

	badChain := pet()
	badChain.Derived = []entity.Derived{{Key: "d", Via: []string{"owner", "missing"}}}

	cases := map[string][]entity.Schema{
		"empty kind":       {{Path: "/x"}},
		"duplicate kind":   {owner(), owner()},
		"path":             {badPath},
		"duplicate key":    {dupKey},
		"id key":           {idKey},
		"duplicate search": {dupSearch},
		"unregistered ref": {pet()},
		"bad chain":        {owner(), badChain},
	}
	for name, schemas := range cases {
		b := entity.NewBuilder()
		for _, s := range schemas {
			b.Register(s)
		}
		_, err := b.Build()
		assert.ErrorIs(t, err, entity.ErrInvalidSchema, name)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg, err := clinic.NewRegistry()
	require.NoError(t, err)

	_, err = reg.Lookup("invoices")
	assert.ErrorIs(t, err, entity.ErrUnknownKind)
}

func TestRegistry_ChainAndDependencies(t *testing.T) {
	reg, err := clinic.NewRegistry()
	require.NoError(t, err)

	refs, err := reg.Chain(clinic.KindReport, []string{"appointmentId", "doctor"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, clinic.KindAppointment, refs[0].Kind)
	assert.Equal(t, clinic.KindDoctor, refs[1].Kind)

	assert.Equal(t,
		[]entity.Kind{clinic.KindDoctor, clinic.KindAppointment, clinic.KindAnimal},
		reg.Dependencies(clinic.KindReport))
	assert.Equal(t, []entity.Kind{clinic.KindCustomer}, reg.Dependencies(clinic.KindAnimal))
	assert.Equal(t, []entity.Kind{clinic.KindAnimal}, reg.Dependencies(clinic.KindVaccination))
	assert.Empty(t, reg.Dependencies(clinic.KindCustomer))
	assert.Nil(t, reg.Dependencies("invoices"))
}
