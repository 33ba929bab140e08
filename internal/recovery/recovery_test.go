package recovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"GoLex/internal/ruleset"
	"GoLex/internal/testutil"
)

func setupStore(t *testing.T) *ruleset.Store {
	t.Helper()
	store, err := ruleset.OpenStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func testOptions(t *testing.T) Options {
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	return opts
}

func TestRecover_EmptyStore(t *testing.T) {
	result, err := Recover(setupStore(t), testOptions(t))
	require.NoError(t, err)
	assert.Empty(t, result.Rulesets)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.TmpFilesRemoved)
}

func TestRecover_LoadsValidRulesets(t *testing.T) {
	store := setupStore(t)
	a := testutil.ClassRuleset()
	b := testutil.ClassRuleset()
	b.Name = "another"
	require.NoError(t, store.Save(a))
	require.NoError(t, store.Save(b))

	result, err := Recover(store, testOptions(t))
	require.NoError(t, err)
	require.Len(t, result.Rulesets, 2)
	assert.Equal(t, "another", result.Rulesets[0].Name)
	assert.Equal(t, "class-decl", result.Rulesets[1].Name)
}

func TestRecover_CleansTmp(t *testing.T) {
	store := setupStore(t)
	tmpDir := store.Dir().TmpDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "atomic-123"), []byte("half"), 0o644))

	result, err := Recover(store, testOptions(t))
	require.NoError(t, err)
	assert.Len(t, result.TmpFilesRemoved, 1)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecover_QuarantinesCorruptFile(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Save(testutil.ClassRuleset()))
	path := store.Dir().RulesetPath("class-decl")
	require.NoError(t, os.WriteFile(path, []byte("name: class-decl\nrules: [\n"), 0o644))

	result, err := Recover(store, testOptions(t))
	require.NoError(t, err)
	assert.Empty(t, result.Rulesets)
	assert.Equal(t, []string{"class-decl"}, result.Skipped)
	require.Len(t, result.Quarantined, 1)

	testutil.AssertFileExists(t, result.Quarantined[0])
	assert.NoFileExists(t, path)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRecover_LeavesCorruptFileWithoutQuarantine(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Save(testutil.ClassRuleset()))
	path := store.Dir().RulesetPath("class-decl")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, []byte("description: edited\n")...), 0o644))

	opts := testOptions(t)
	opts.Quarantine = false
	result, err := Recover(store, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"class-decl"}, result.Skipped)
	assert.Empty(t, result.Quarantined)
	testutil.AssertFileExists(t, path)
}
