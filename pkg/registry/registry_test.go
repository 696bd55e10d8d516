package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ResolvesIPEDSTemplates(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())

	tests := []struct {
		name     string
		expected string
	}{
		{"IPEDS Directory", "https://educationdata.urban.org/api/v1/college-university/ipeds/directory/2010/"},
		{"IPEDS Institutional Characteristics", "https://educationdata.urban.org/api/v1/college-university/ipeds/institutional-characteristics/2010/"},
		{"IPEDS Admissions", "https://educationdata.urban.org/api/v1/college-university/ipeds/admissions/2010/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := reg.Lookup(tt.name)
			require.True(t, ok)
			assert.True(t, d.YearPartitioned)
			assert.Equal(t, tt.expected, d.ResolveURL("https://educationdata.urban.org/api/v1/", 2010))
		})
	}

	_, ok := reg.Lookup("Unknown Dataset")
	assert.False(t, ok)
}

func TestResolveURL_AddsSlashToBase(t *testing.T) {
	d := Dataset{Name: "x", Path: "/schools/ccd/directory/{year}/", YearPartitioned: true}
	assert.Equal(t, "http://api/schools/ccd/directory/2001/", d.ResolveURL("http://api", 2001))
}

func TestLoadWithDefaults_MergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.json")
	extra := &DatasetRegistry{
		Version: "1.1.0",
		Datasets: []Dataset{
			{Name: "CCD Schools Directory", Path: "schools/ccd/directory/{year}/", YearPartitioned: true},
			{Name: "IPEDS Admissions", Path: "college-university/ipeds/admissions-enrollment/{year}/", YearPartitioned: true},
		},
	}
	require.NoError(t, SaveRegistry(path, extra))

	reg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"IPEDS Directory",
		"IPEDS Institutional Characteristics",
		"IPEDS Admissions",
		"CCD Schools Directory",
	}, reg.Names())
	d, _ := reg.Lookup("IPEDS Admissions")
	assert.Contains(t, d.Path, "admissions-enrollment")
	assert.Equal(t, "1.1.0", reg.Version)
}

func TestLoadRegistry_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"datasets": [`},
		{"missing placeholder", `{"datasets":[{"name":"A","path":"a/","yearPartitioned":true}]}`},
		{"unexpected placeholder", `{"datasets":[{"name":"A","path":"a/{year}/"}]}`},
		{"duplicate", `{"datasets":[{"name":"A","path":"a/"},{"name":"A","path":"b/"}]}`},
		{"missing name", `{"datasets":[{"path":"a/"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "r.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := LoadRegistry(path)
			assert.Error(t, err)
		})
	}
}
