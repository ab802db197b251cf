package jobs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiresCode(t *testing.T) {
	tests := []struct {
		job  Job
		want bool
	}{
		{job: Refactoring, want: true},
		{job: Explaining, want: true},
		{job: Checking, want: true},
		{job: Adding, want: true},
		{job: Implementing, want: false},
		{job: Transpiling, want: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.job), func(t *testing.T) {
			got, err := RequiresCode(tt.job)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiresCodeUnknownJob(t *testing.T) {
	_, err := RequiresCode(Job("COMPILING"))
	require.Error(t, err)

	var unsupportedErr *UnsupportedJobError
	require.True(t, errors.As(err, &unsupportedErr))
	assert.Equal(t, "COMPILING", unsupportedErr.Name)
}

func TestParse(t *testing.T) {
	t.Run("known names", func(t *testing.T) {
		for _, job := range All() {
			parsed, err := Parse(string(job))
			require.NoError(t, err)
			assert.Equal(t, job, parsed)
		}
	})

	t.Run("unknown name lists valid jobs", func(t *testing.T) {
		_, err := Parse("refactoring")
		require.Error(t, err)

		var unsupportedErr *UnsupportedJobError
		require.True(t, errors.As(err, &unsupportedErr))
		assert.Equal(t, "refactoring", unsupportedErr.Name)
		for _, job := range All() {
			assert.Contains(t, err.Error(), string(job))
		}
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := Parse("")
		var unsupportedErr *UnsupportedJobError
		require.True(t, errors.As(err, &unsupportedErr))
	})
}

func TestAllDeclarationOrder(t *testing.T) {
	want := []Job{Refactoring, Explaining, Checking, Adding, Implementing, Transpiling}
	assert.Equal(t, want, All())

	// The returned slice is a copy.
	got := All()
	got[0] = Job("MUTATED")
	assert.Equal(t, Refactoring, All()[0])
}

// TestCatalogComplete guards the invariant that every variant owns both a
// parsed template and its static metadata. Go cannot enforce exhaustiveness
// at compile time, so the table and the declaration list are checked against
// each other here.
func TestCatalogComplete(t *testing.T) {
	all := All()
	require.Len(t, jobTable, len(all))
	require.Len(t, jobTemplates, len(all))

	for _, job := range all {
		spec, ok := jobTable[job]
		require.True(t, ok, "job %s missing from table", job)
		assert.NotEmpty(t, spec.templateFile, "job %s has no template file", job)
		assert.NotEmpty(t, spec.description, "job %s has no description", job)
		assert.NotNil(t, jobTemplates[job], "job %s has no parsed template", job)
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "Refactor the code to make it more readable.", Refactoring.Description())
	assert.Equal(t, "Transpile the code to a different language.", Transpiling.Description())
}
