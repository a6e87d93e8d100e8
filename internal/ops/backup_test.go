package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"),
		[]byte(`[{"id":"t1","text":"backed up"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clients.json"),
		[]byte(`["acme"]`), 0o644))
	return dir
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	src := seedDataDir(t)
	archive := filepath.Join(t.TempDir(), "backup.tar.gz")

	require.NoError(t, BackupDataDir(src, archive))
	info, err := os.Stat(archive)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	dst := t.TempDir()
	require.NoError(t, RestoreDataDir(archive, dst))

	want, err := os.ReadFile(filepath.Join(src, "tasks.json"))
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(dst, "tasks.json"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = os.ReadFile(filepath.Join(dst, "clients.json"))
	require.NoError(t, err)
	assert.Equal(t, `["acme"]`, string(got))
}

func TestBackup_MissingSourceFails(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	err := BackupDataDir(filepath.Join(t.TempDir(), "absent"), archive)
	assert.Error(t, err)
}

func TestRestore_MissingArchiveFails(t *testing.T) {
	err := RestoreDataDir(filepath.Join(t.TempDir(), "absent.tar.gz"), t.TempDir())
	assert.Error(t, err)
}

func TestRestore_RejectsCorruptArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bogus.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("not a tarball"), 0o644))

	err := RestoreDataDir(archive, t.TempDir())
	assert.Error(t, err)
}

func TestSanitizeArchiveRelPath(t *testing.T) {
	for _, bad := range []string{"../escape", "/abs/path", "a/../../b"} {
		_, err := sanitizeArchiveRelPath(bad)
		assert.Error(t, err, "path %q", bad)
	}

	rel, err := sanitizeArchiveRelPath("sub/tasks.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("sub/tasks.json"), rel)
}
