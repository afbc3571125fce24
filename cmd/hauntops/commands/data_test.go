package commands

import (
	"os"
	"path/filepath"
	"testing"

	"hauntops-backend/etl/fieldmap"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestReadJsonRows(t *testing.T) {
	path := writeFile(t, "users.json", `[{"emailAddress": "a@example.com"}, {"emailAddress": "b@example.com"}]`)
	rows, err := readRows(path, fieldmap.Mapping{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "a@example.com", rows[0]["emailAddress"])
}

func TestReadJsonEnvelope(t *testing.T) {
	path := writeFile(t, "users.json", `{"participants": [{"emailAddress": "a@example.com"}]}`)
	rows, err := readRows(path, fieldmap.Mapping{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestReadCsvRows(t *testing.T) {
	mapping := fieldmap.Mapping{
		CSVHeaders: map[string]string{"Email": "email", "First Name": "first_name"},
	}
	path := writeFile(t, "users.csv", "Email,First Name\na@example.com,Boo\nb@example.com,Moo\n")
	rows, err := readRows(path, mapping)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "a@example.com", rows[0]["email"])
	require.Equal(t, "Moo", rows[1]["first_name"])
}

func TestReadRowsBadJson(t *testing.T) {
	path := writeFile(t, "users.json", "not json")
	_, err := readRows(path, fieldmap.Mapping{})
	require.Error(t, err)
}
