package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadClientJSON(t *testing.T) {
	path := writeTempFile(t, "client.json", `{
  "client": {
    "personal": {
      "full_name": "Jane Doe",
      "dob": "1990-03-20",
      "zipcode": "85001-1234",
      "household_size": 2,
      "annual_income": 64000
    },
    "medical_profile": {
      "providers": [
        {"name": "Dr. Smith", "specialty": "Primary Care", "priority": "must-keep", "visit_frequency": 2},
        {"name": "Dr. Lee", "specialty": "Dermatology"}
      ],
      "medications": [
        {"name": "Metformin", "dosage": "500mg", "frequency": "Daily", "annual_doses": 365},
        {"name": "Lisinopril"}
      ]
    },
    "priorities": {"keep_providers": 5, "minimize_total_cost": 4, "predictable_costs": 3, "avoid_prior_auth": 4, "simple_admin": 3}
  }
}`)

	c, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.Personal.FullName)
	assert.Equal(t, "85001", c.Personal.Zipcode)
	require.Len(t, c.MedicalProfile.Providers, 2)
	assert.Equal(t, PriorityMustKeep, c.MedicalProfile.Providers[0].Priority)

	// Unset priority and visit frequency fall back to defaults.
	assert.Equal(t, PriorityNiceToKeep, c.MedicalProfile.Providers[1].Priority)
	assert.Equal(t, 1, c.MedicalProfile.Providers[1].VisitFrequency)
	assert.Equal(t, 1, c.MedicalProfile.Medications[1].AnnualDoses)
	assert.Equal(t, 5, c.Priorities.KeepProviders)
}

func TestLoadClientYAML(t *testing.T) {
	path := writeTempFile(t, "client.yaml", `client:
  personal:
    full_name: John Roe
    dob: "1975-11-02"
    zipcode: "30301"
    household_size: 1
    annual_income: 42000
  medical_profile:
    providers:
      - name: Dr. Adams
        specialty: Cardiology
        priority: must-keep
`)

	c, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "John Roe", c.Personal.FullName)
	assert.Equal(t, "30301", c.Personal.Zipcode)
	require.Len(t, c.MedicalProfile.Providers, 1)
	assert.Equal(t, PriorityMustKeep, c.MedicalProfile.Providers[0].Priority)

	// Missing priorities section falls back to the neutral defaults.
	assert.Equal(t, DefaultPriorities(), c.Priorities)
}

func TestLoadClientInvalidZip(t *testing.T) {
	path := writeTempFile(t, "client.json", `{
  "client": {
    "personal": {"full_name": "X", "dob": "2000-01-01", "zipcode": "abc", "household_size": 1, "annual_income": 10000}
  }
}`)

	_, err := LoadClient(path)
	require.Error(t, err)
}

func TestLoadClientUnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "client.txt", "whatever")
	_, err := LoadClient(path)
	require.Error(t, err)
}

func TestSampleClient(t *testing.T) {
	c := SampleClient()
	assert.Equal(t, "85001", c.Personal.Zipcode)
	require.NoError(t, c.Personal.Validate())
	require.Len(t, c.MedicalProfile.MustKeepProviders(), 1)
	assert.Equal(t, "Dr. Smith", c.MedicalProfile.MustKeepProviders()[0].Name)
}
