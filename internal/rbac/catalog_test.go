package rbac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCatalogRejectsCycle(t *testing.T) {
	_, err := NewCatalog([]Role{
		{ID: 1, Name: "A", Level: 1, Parents: []int64{3}},
		{ID: 2, Name: "B", Level: 2, Parents: []int64{1}},
		{ID: 3, Name: "C", Level: 3, Parents: []int64{2}},
	})
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewCatalogRejectsDuplicateID(t *testing.T) {
	_, err := NewCatalog([]Role{
		{ID: 1, Name: "A", Level: 1},
		{ID: 1, Name: "B", Level: 2},
	})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewCatalogRejectsDanglingParent(t *testing.T) {
	_, err := NewCatalog([]Role{
		{ID: 1, Name: "A", Level: 1, Parents: []int64{7}},
	})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewCatalogRejectsSelfLoop(t *testing.T) {
	_, err := NewCatalog([]Role{
		{ID: 1, Name: "A", Level: 1, Parents: []int64{1}},
	})
	require.Error(t, err, "a self-loop is a cycle")
}

func TestNewCatalogRejectsCycleThroughRoleZero(t *testing.T) {
	_, err := NewCatalog([]Role{
		{ID: 0, Name: "A", Level: 1, Parents: []int64{0}},
	})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr, "id zero is a legal role and must not mask a cycle")

	_, err = NewCatalog([]Role{
		{ID: 0, Name: "A", Level: 1, Parents: []int64{1}},
		{ID: 1, Name: "B", Level: 2, Parents: []int64{0}},
	})
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	payload := `[
		{"id": 1, "name": "Director", "level": 1, "permissions": ["*"]},
		{"id": 2, "name": "Advisor", "level": 3, "permissions": ["clients.view"], "parents": [1]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	catalog, err := LoadCatalogFile(path)
	require.NoError(t, err)

	role, ok := catalog.Role(2)
	require.True(t, ok)
	require.Equal(t, "Advisor", role.Name)
	require.Equal(t, []int64{1}, role.Parents)
}

func TestLoadCatalogFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadCatalogFile(path)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestDefaultCatalogIsValid(t *testing.T) {
	catalog := DefaultCatalog()
	require.NotNil(t, catalog)

	resolver := NewResolver(catalog)
	require.True(t, resolver.HasPermission(1, "sales.complete"), "director holds everything via wildcard")
	require.True(t, resolver.CanSupervise(2, 4))
}
