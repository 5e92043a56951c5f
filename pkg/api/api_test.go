package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" doctor ")
	require.NoError(t, err)
	assert.Equal(t, RoleDoctor, r)

	_, err = ParseRole("ADMIN")
	assert.Error(t, err)

	assert.True(t, RoleStaff.Clinical())
	assert.True(t, RoleDoctor.Clinical())
	assert.False(t, RolePatient.Clinical())
	assert.False(t, Role("").Valid())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/api/patients/Anna%20Svensson/full", RecordByNamePath("Anna Svensson"))
	assert.Equal(t, "/api/patients/a%2Fb/full", RecordByNamePath("a/b"))
	assert.Equal(t, "/api/messages/thread/42", ThreadPath(42))
}

func TestCreateConditionRequest_NullOnset(t *testing.T) {
	b, err := json.Marshal(CreateConditionRequest{PatientName: "Anna", Code: "J45", Display: "Astma"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"patientName":"Anna","code":"J45","display":"Astma","onsetDate":null}`, string(b))
}
