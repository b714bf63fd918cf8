package domaintest

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// RandomSuffix returns n random hex characters for names shared between parallel tests
func RandomSuffix(t *testing.T, n int) string {
	t.Helper()
	require.LessOrEqual(t, n, 32)

	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return strings.ReplaceAll(id.String(), "-", "")[:n]
}
