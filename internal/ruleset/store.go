package ruleset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"GoLex/internal/storage"
)

const fileExt = ".yaml"

// Dir is the on-disk layout of the data directory.
// All path methods are pure functions with no I/O side effects.
type Dir struct {
	Root string
}

// NewDir creates a Dir for the given root path.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// RulesetsDir returns the path to the rulesets/ directory.
func (d *Dir) RulesetsDir() string {
	return filepath.Join(d.Root, "rulesets")
}

// TmpDir returns the path to tmp/, used for atomic writes.
func (d *Dir) TmpDir() string {
	return filepath.Join(d.Root, "tmp")
}

// RulesetPath returns the file holding the named rule set.
func (d *Dir) RulesetPath(name string) string {
	return filepath.Join(d.RulesetsDir(), name+fileExt)
}

// QuarantineDir returns the path to quarantine/, where files that failed
// verification are moved.
func (d *Dir) QuarantineDir() string {
	return filepath.Join(d.Root, "quarantine")
}

// EnsureDirectories creates all required directories.
func (d *Dir) EnsureDirectories() error {
	for _, dir := range []string{d.RulesetsDir(), d.TmpDir(), d.QuarantineDir()} {
		if err := storage.EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// Store persists rule sets as checksummed YAML files.
type Store struct {
	dir *Dir
}

// OpenStore prepares the directory layout under root.
func OpenStore(root string) (*Store, error) {
	dir := NewDir(root)
	if err := dir.EnsureDirectories(); err != nil {
		return nil, errors.Wrap(err, "open rule set store")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store layout.
func (s *Store) Dir() *Dir {
	return s.dir
}

// Save atomically writes rs, replacing any previous version.
func (s *Store) Save(rs *Ruleset) error {
	if err := ValidateName(rs.Name); err != nil {
		return err
	}
	data, err := Marshal(rs)
	if err != nil {
		return err
	}
	if err := storage.AtomicWriteFile(s.dir.RulesetPath(rs.Name), data, s.dir.TmpDir()); err != nil {
		return errors.Wrapf(err, "save rule set %q", rs.Name)
	}
	return nil
}

// Load reads and verifies the named rule set.
func (s *Store) Load(name string) (*Ruleset, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.dir.RulesetPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRulesetNotFound, "%q", name)
		}
		return nil, errors.Wrapf(err, "read rule set %q", name)
	}
	rs, err := Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load rule set %q", name)
	}
	if rs.Name != name {
		return nil, errors.Wrapf(ErrRulesetCorrupt, "file %q holds rule set %q", name, rs.Name)
	}
	return rs, nil
}

// Delete removes the named rule set file.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := s.dir.RulesetPath(name)
	if !storage.FileExists(path) {
		return errors.Wrapf(ErrRulesetNotFound, "%q", name)
	}
	return storage.RemoveFile(path)
}

// List returns the sorted names of all stored rule sets.
func (s *Store) List() ([]string, error) {
	files, err := storage.ListFiles(s.dir.RulesetsDir(), fileExt)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = strings.TrimSuffix(f, fileExt)
	}
	return names, nil
}
