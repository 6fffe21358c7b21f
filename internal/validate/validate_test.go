package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@exemplo.com", NormalizeEmail("  Ana@Exemplo.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "ana@exemplo.com", false},
		{"valid subdomain", "ana@mail.exemplo.com.br", false},
		{"empty", "", true},
		{"no at", "ana.exemplo.com", true},
		{"no domain dot", "ana@exemplo", true},
		{"spaces", "ana maria@exemplo.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				var vErr *Error
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "email", vErr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("Ana"))
	assert.NoError(t, Name("Jo"))

	assert.Error(t, Name(""))
	assert.Error(t, Name("   "))
	assert.Error(t, Name("A"))

	long := make([]rune, 101)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, Name(string(long)))
	assert.NoError(t, Name(string(long[:100])))
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("title", "Um título"))

	err := Required("title", "   ")
	require.Error(t, err)

	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
}
