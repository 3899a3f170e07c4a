package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var supported = []string{"moodle", "dis", "stepik"}

func TestDecodeJSONBundle(t *testing.T) {
	bundle, err := Decode([]byte(`{
  "moodle": "m-token",
  "dis": null,
  "stepik": { "client_id": "id", "client_secret": "secret" }
}`))
	require.NoError(t, err)

	assert.Equal(t, Value{Token: "m-token"}, bundle["moodle"])
	assert.Equal(t, Value{Token: ""}, bundle["dis"])
	assert.Equal(t, Value{Fields: map[string]string{"client_id": "id", "client_secret": "secret"}}, bundle["stepik"])
}

func TestDecodeYAMLBundle(t *testing.T) {
	bundle, err := Decode([]byte("moodle: m-token\nstepik:\n  client_id: 12345\n  client_secret: s3cr3t\n"))
	require.NoError(t, err)

	assert.Equal(t, "m-token", bundle["moodle"].Token)
	assert.Equal(t, "12345", bundle["stepik"].Fields["client_id"])
}

func TestDecodeFalsyValues(t *testing.T) {
	bundle, err := Decode([]byte(`{
  "moodle": 0,
  "dis": 0.0,
  "stepik": { "client_id": 0, "client_secret": false },
  "gitlab": [],
  "codeforces": "0"
}`))
	require.NoError(t, err)

	assert.Equal(t, Value{Token: ""}, bundle["moodle"])
	assert.Equal(t, Value{Token: ""}, bundle["dis"])
	assert.Equal(t, Value{Fields: map[string]string{"client_id": "", "client_secret": ""}}, bundle["stepik"])
	assert.Equal(t, Value{Token: ""}, bundle["gitlab"])
	assert.Equal(t, Value{Token: "0"}, bundle["codeforces"])

	_, err = Validate(bundle, supported...)
	assert.ErrorIs(t, err, ErrNoSupportedSystems)

	delete(bundle, "codeforces")

	_, err = Validate(bundle, supported...)
	assert.ErrorIs(t, err, ErrNoUsableCredentials)
}

func TestDecodeInvalidBundle(t *testing.T) {
	_, err := Decode([]byte(`["moodle"]`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		bundle   Bundle
		expected []string
		err      error
	}{
		{
			name: "all systems",
			bundle: Bundle{
				"moodle": {Token: "m"},
				"dis":    {Token: "d"},
				"stepik": {Fields: map[string]string{"client_id": "id", "client_secret": "secret"}},
			},
			expected: []string{"dis", "moodle", "stepik"},
		},
		{
			name: "unsupported keys are dropped",
			bundle: Bundle{
				"moodle":  {Token: "m"},
				"unknown": {Token: "u"},
			},
			expected: []string{"moodle"},
		},
		{
			name: "empty values are dropped",
			bundle: Bundle{
				"moodle": {Token: "m"},
				"dis":    {Token: ""},
			},
			expected: []string{"moodle"},
		},
		{
			name:   "empty bundle",
			bundle: Bundle{},
			err:    ErrNoUsableCredentials,
		},
		{
			name: "no truthy values",
			bundle: Bundle{
				"moodle": {Token: ""},
				"stepik": {Fields: map[string]string{}},
			},
			err: ErrNoUsableCredentials,
		},
		{
			name: "no supported systems",
			bundle: Bundle{
				"canvas": {Token: "c"},
			},
			err: ErrNoSupportedSystems,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			registry, err := Validate(test.bundle, supported...)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				assert.Nil(t, registry)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, registry.Systems())
		})
	}
}

func TestRegistryLookups(t *testing.T) {
	registry, err := Validate(Bundle{
		"moodle": {Token: " m-token "},
		"stepik": {Fields: map[string]string{"client_id": "id"}},
	}, supported...)
	require.NoError(t, err)

	token, err := registry.Token("moodle")
	require.NoError(t, err)
	assert.Equal(t, "m-token", token)

	_, err = registry.Token("dis")
	assert.Error(t, err)

	_, err = registry.Token("stepik")
	assert.Error(t, err)

	id, err := registry.Field("stepik", "client_id")
	require.NoError(t, err)
	assert.Equal(t, "id", id)

	_, err = registry.Field("stepik", "client_secret")
	assert.Error(t, err)

	assert.True(t, registry.Has("moodle"))
	assert.False(t, registry.Has("dis"))
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "systems.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dis": "d-token"}`), 0600))

	registry, err := LoadRegistry(path, supported...)
	require.NoError(t, err)
	assert.Equal(t, []string{"dis"}, registry.Systems())

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"), supported...)
	assert.Error(t, err)
}
