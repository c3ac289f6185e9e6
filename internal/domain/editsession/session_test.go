package editsession

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-console/internal/domain/clinic"
	"vet-console/internal/domain/entity"
)

func doctorRow(id, name string) entity.Record {
	return entity.Record{"id": json.Number(id), "name": name, "phone": "555", "email": "", "address": "", "city": "Lima"}
}

func TestNew_IsIdleAndClean(t *testing.T) {
	s := New(clinic.Doctor())
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Dirty())
	assert.Equal(t, entity.BlankDraft(clinic.Doctor()), s.Draft())
}

func TestSet_IdleToDrafting(t *testing.T) {
	s := New(clinic.Doctor())

	next, err := s.Set("name", "Dr. Vega")
	require.NoError(t, err)
	assert.Equal(t, StateDrafting, next.State())
	assert.True(t, next.Dirty())
	assert.Equal(t, "Dr. Vega", next.Draft()["name"])

	// El valor anterior no cambia.
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, "", s.Draft()["name"])
}

func TestSet_UnknownFieldRejected(t *testing.T) {
	s := New(clinic.Doctor())
	next, err := s.SetAll(map[string]string{"name": "x", "salary": "1"})
	assert.ErrorIs(t, err, entity.ErrUnknownField)
	assert.Equal(t, s, next)
}

func TestEdit_LoadsRowValues(t *testing.T) {
	s := New(clinic.Appointment())
	rec := entity.Record{
		"id":              json.Number("40"),
		"appointmentDate": "2024-01-05T09:00:00",
		"doctor":          map[string]any{"id": json.Number("3"), "name": "Dr. Vega"},
		"animal":          map[string]any{"id": json.Number("9")},
	}

	next, err := s.Edit(rec, false)
	require.NoError(t, err)
	assert.Equal(t, StateEditing, next.State())
	assert.Equal(t, "40", next.ID())
	assert.True(t, next.Editing("40"))
	assert.False(t, next.Dirty())
	assert.Equal(t, entity.Draft{"appointmentDate": "2024-01-05T09:00:00", "doctor": "3", "animal": "9"}, next.Draft())
}

func TestEdit_FromDraftingDiscardsDraft(t *testing.T) {
	s, err := New(clinic.Doctor()).Set("name", "half typed")
	require.NoError(t, err)

	s, err = s.Edit(doctorRow("3", "Dr. Vega"), false)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Vega", s.Draft()["name"])
}

func TestEdit_RetargetCleanSession(t *testing.T) {
	s, err := New(clinic.Doctor()).Edit(doctorRow("1", "A"), false)
	require.NoError(t, err)

	s, err = s.Edit(doctorRow("2", "B"), false)
	require.NoError(t, err)
	assert.Equal(t, "2", s.ID())
	assert.False(t, s.Editing("1"))
	assert.True(t, s.Editing("2"))
}

func TestEdit_DirtyRetargetNeedsConfirm(t *testing.T) {
	s, err := New(clinic.Doctor()).Edit(doctorRow("1", "A"), false)
	require.NoError(t, err)
	s, err = s.Set("name", "A edited")
	require.NoError(t, err)

	blocked, err := s.Edit(doctorRow("2", "B"), false)
	assert.ErrorIs(t, err, ErrUnsavedChanges)
	assert.Equal(t, s, blocked)
	assert.Equal(t, "1", blocked.ID())
	assert.Equal(t, "A edited", blocked.Draft()["name"])

	moved, err := s.Edit(doctorRow("2", "B"), true)
	require.NoError(t, err)
	assert.Equal(t, "2", moved.ID())
	assert.Equal(t, "B", moved.Draft()["name"])
	assert.False(t, moved.Dirty())
}

func TestEdit_RecordWithoutID(t *testing.T) {
	_, err := New(clinic.Doctor()).Edit(entity.Record{"name": "x"}, false)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestCancelAndSubmitted_ResetToBlank(t *testing.T) {
	s, err := New(clinic.Doctor()).Edit(doctorRow("1", "A"), false)
	require.NoError(t, err)
	s, err = s.Set("city", "Cusco")
	require.NoError(t, err)

	for _, reset := range []Session{s.Cancel(), s.Submitted()} {
		assert.Equal(t, StateIdle, reset.State())
		assert.Equal(t, "", reset.ID())
		assert.False(t, reset.Dirty())
		assert.Equal(t, entity.BlankDraft(clinic.Doctor()), reset.Draft())
	}
}

func TestPayload_CompleteDraft(t *testing.T) {
	s, err := New(clinic.Doctor()).Edit(doctorRow("1", "A"), false)
	require.NoError(t, err)
	s, err = s.Set("phone", "999")
	require.NoError(t, err)

	assert.Equal(t, entity.Draft{
		"name":    "A",
		"phone":   "999",
		"email":   "",
		"address": "",
		"city":    "Lima",
	}, s.Payload())
}

func TestRev_ChangesOnEveryTransition(t *testing.T) {
	s := New(clinic.Doctor())
	r0 := s.Rev()
	s, _ = s.Set("name", "x")
	r1 := s.Rev()
	s = s.Cancel()

	assert.Less(t, r0, r1)
	assert.Less(t, r1, s.Rev())
}

func TestView(t *testing.T) {
	s, err := New(clinic.Doctor()).Set("name", "x")
	require.NoError(t, err)

	v := s.View()
	assert.Equal(t, StateDrafting, v.State)
	assert.True(t, v.Dirty)
	assert.Equal(t, "x", v.Draft["name"])
}
