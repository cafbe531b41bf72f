package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/and161185/sales-intel/internal/model"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoadClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "salesintel")
	s := NewFileStore(dir)

	_, ok := s.Load()
	require.False(t, ok, "missing file reads as absent")

	require.NoError(t, s.Save(Credential{Token: "tok", Role: model.RoleAdmin}))
	c, ok := s.Load()
	require.True(t, ok)
	require.Equal(t, "tok", c.Token)
	require.Equal(t, model.RoleAdmin, c.Role)

	st, err := os.Stat(s.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	require.NoError(t, s.Clear())
	_, ok = s.Load()
	require.False(t, ok)
	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestFileStore_CorruptReadsAbsent(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))
	_, ok := s.Load()
	require.False(t, ok)

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"access_token":"","role":"admin"}`), 0o600))
	_, ok = s.Load()
	require.False(t, ok, "empty token is absent")

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"access_token":"x","role":"root"}`), 0o600))
	_, ok = s.Load()
	require.False(t, ok, "unknown role is absent")
}

func TestFileStore_MissingRoleIsVendas(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"access_token":"x"}`), 0o600))

	c, ok := s.Load()
	require.True(t, ok)
	require.Equal(t, model.RoleVendas, c.Role)
}

func TestFileStore_SaveEmptyToken(t *testing.T) {
	require.Error(t, NewFileStore(t.TempDir()).Save(Credential{}))
}

func TestMemory(t *testing.T) {
	var m Memory
	_, ok := m.Load()
	require.False(t, ok)
	require.NoError(t, m.Save(Credential{Token: "a", Role: model.RoleVendas}))
	c, ok := m.Load()
	require.True(t, ok)
	require.Equal(t, "a", c.Token)
	require.NoError(t, m.Clear())
	_, ok = m.Load()
	require.False(t, ok)
}
