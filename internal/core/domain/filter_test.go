package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfiles() []Profile {
	return []Profile{
		{ID: "1", Nombre: "Ana", Requisitoriado: false},
		{ID: "2", Nombre: "Luis", Requisitoriado: true},
		{ID: "3", Nombre: "Marta", Requisitoriado: false},
		{ID: "4", Nombre: "Pedro", Requisitoriado: true},
	}
}

func ids(ps []Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterProfiles_AllReturnsInputUnchanged(t *testing.T) {
	in := sampleProfiles()
	assert.Equal(t, in, FilterProfiles(in, FilterAll))
	assert.Equal(t, in, FilterProfiles(FilterProfiles(in, FilterAll), FilterAll))
}

func TestFilterProfiles_PartitionIsDisjointAndExhaustive(t *testing.T) {
	in := sampleProfiles()

	flagged := FilterProfiles(in, FilterFlagged)
	unflagged := FilterProfiles(in, FilterUnflagged)

	assert.Equal(t, []string{"2", "4"}, ids(flagged))
	assert.Equal(t, []string{"1", "3"}, ids(unflagged))
	assert.Len(t, in, len(flagged)+len(unflagged))
	for _, p := range flagged {
		assert.True(t, p.Requisitoriado)
	}
	for _, p := range unflagged {
		assert.False(t, p.Requisitoriado)
	}
}

func TestFilterProfiles_Idempotent(t *testing.T) {
	in := sampleProfiles()
	for _, f := range Filters {
		once := FilterProfiles(in, f)
		assert.Equal(t, once, FilterProfiles(once, f), "filter %s", f)
	}
}

func TestFilterProfiles_EmptyInput(t *testing.T) {
	assert.Empty(t, FilterProfiles(nil, FilterFlagged))
	assert.Empty(t, FilterProfiles(nil, FilterAll))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("no_requisitoriados")
	require.NoError(t, err)
	assert.Equal(t, FilterUnflagged, f)

	_, err = ParseFilter("wanted")
	assert.Error(t, err)
}

func TestProfileFields_SetGet(t *testing.T) {
	p := Profile{ID: "7", Nombre: "Ana", Apellidos: "Pérez", CodigoEstudiante: "S123", Correo: "ana@uni.edu"}
	f := p.Fields()

	require.NoError(t, f.Set(FieldCorreo, "ana@otra.edu"))
	got, err := f.Get(FieldCorreo)
	require.NoError(t, err)
	assert.Equal(t, "ana@otra.edu", got)
	assert.Equal(t, "ana@uni.edu", p.Correo, "draft must not alias the profile")

	var unknown *UnknownFieldError
	assert.ErrorAs(t, f.Set("telefono", "1"), &unknown)
	assert.Equal(t, "Ana Pérez", p.FullName())
}
