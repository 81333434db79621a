package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

func TestDefault(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"factorial", "parse_csv_line", "is_anagram", "sum_list"}, r.Names())

	fact, ok := r.Get("factorial")
	require.True(t, ok)
	assert.Equal(t, "Factorial", fact.Function)
	require.Len(t, fact.Cases, 3)
	assert.Equal(t, "factorial::case_3", fact.Cases[2].Name)
	assert.Equal(t, []any{-1}, fact.Cases[2].Input)
	assert.Equal(t, -1, fact.Cases[2].Expected)
	assert.Equal(t, domain.CompareExact, fact.Cases[2].Compare)
	assert.NotEmpty(t, fact.Answers[domain.SignalNegativeInput])

	csv, ok := r.Get("parse_csv_line")
	require.True(t, ok)
	assert.Equal(t, []any{`a,"b,c",d`}, csv.Cases[0].Input)
	assert.Equal(t, []any{"a", "b,c", "d"}, csv.Cases[0].Expected)

	sum, ok := r.Get("sum_list")
	require.True(t, ok)
	last := sum.Cases[len(sum.Cases)-1]
	assert.True(t, last.ExpectError)
	assert.Equal(t, []any{nil}, last.Input)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []domain.Task
		wantErr error
	}{
		{
			name:    "missing name",
			tasks:   []domain.Task{{Function: "F"}},
			wantErr: cferrors.ErrInvalidTask,
		},
		{
			name:    "missing function",
			tasks:   []domain.Task{{Name: "a"}},
			wantErr: cferrors.ErrInvalidTask,
		},
		{
			name:    "duplicate",
			tasks:   []domain.Task{{Name: "a", Function: "F"}, {Name: "a", Function: "G"}},
			wantErr: cferrors.ErrDuplicateTask,
		},
		{
			name:    "bad compare mode",
			tasks:   []domain.Task{{Name: "a", Function: "F", Cases: []domain.TestCase{{Compare: "fuzzy"}}}},
			wantErr: cferrors.ErrInvalidTask,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.tasks)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNew_AllowsEmptyDescription(t *testing.T) {
	r, err := New([]domain.Task{{Name: "blank", Function: "F"}})
	require.NoError(t, err)
	_, ok := r.Get("blank")
	assert.True(t, ok)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load([]byte("tasks: [unterminated"))
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	t.Run("empty selects all in registry order", func(t *testing.T) {
		got, err := r.Select(nil)
		require.NoError(t, err)
		assert.Len(t, got, len(r.Names()))
		assert.Equal(t, "factorial", got[0].Name)
	})

	t.Run("follows requested order", func(t *testing.T) {
		got, err := r.Select([]string{"sum_list", "factorial"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "sum_list", got[0].Name)
		assert.Equal(t, "factorial", got[1].Name)
	})

	t.Run("unknown name is fatal", func(t *testing.T) {
		_, err := r.Select([]string{"factorial", "nope"})
		require.ErrorIs(t, err, cferrors.ErrUnknownTask)
		assert.Contains(t, err.Error(), `"nope"`)
	})
}

func TestAll_ReturnsCopy(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	all := r.All()
	all[0].Name = "mutated"

	_, ok := r.Get("factorial")
	assert.True(t, ok)
	assert.Equal(t, "factorial", r.All()[0].Name)
}
