package recovery

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"GoLex/internal/logutil"
	"GoLex/internal/ruleset"
	"GoLex/internal/storage"
)

// Result contains the outcome of startup recovery.
type Result struct {
	// Rulesets are the stored rule sets that passed verification, sorted by
	// name.
	Rulesets []*ruleset.Ruleset

	// Skipped lists rule sets that failed verification.
	Skipped []string

	// Quarantined lists the quarantine paths of moved files.
	Quarantined []string

	// TmpFilesRemoved lists paths removed from tmp/.
	TmpFilesRemoved []string
}

// Recover brings the store back to a consistent state after an unclean
// shutdown and returns every loadable rule set. It must run before the
// store is used for writes.
//
//  1. Remove leftovers of interrupted atomic writes from tmp/.
//  2. Load and verify every stored rule set.
//  3. Move files that fail verification to quarantine/.
func Recover(store *ruleset.Store, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(logutil.FieldComponent("recovery"))
	dir := store.Dir()
	result := &Result{}

	// Step 1: Clean tmp/
	removed, err := storage.RemoveDirContents(dir.TmpDir())
	if err != nil {
		logger.Warn("non-fatal error cleaning tmp", zap.Error(err))
	}
	if len(removed) > 0 {
		logger.Info("cleaned tmp", zap.Int("removed", len(removed)))
	}
	result.TmpFilesRemoved = removed

	// Step 2: Verify rule sets
	names, err := store.List()
	if err != nil {
		return nil, errors.Wrap(err, "recovery: list rule sets")
	}
	for _, name := range names {
		rs, err := store.Load(name)
		if err == nil {
			err = rs.Validate()
		}
		if err == nil {
			result.Rulesets = append(result.Rulesets, rs)
			continue
		}

		logger.Error("rule set failed verification", logutil.FieldRuleset(name), zap.Error(err))
		result.Skipped = append(result.Skipped, name)

		// Step 3: Quarantine
		if !opts.Quarantine {
			continue
		}
		dst := quarantinePath(dir, name)
		if err := storage.MoveFile(dir.RulesetPath(name), dst); err != nil {
			logger.Warn("non-fatal error quarantining rule set", logutil.FieldRuleset(name), zap.Error(err))
			continue
		}
		logger.Info("rule set quarantined", logutil.FieldRuleset(name), zap.String("path", dst))
		result.Quarantined = append(result.Quarantined, dst)
	}

	logger.Info("recovery complete",
		zap.Int("rulesets", len(result.Rulesets)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("tmp_removed", len(result.TmpFilesRemoved)),
	)
	return result, nil
}

func quarantinePath(dir *ruleset.Dir, name string) string {
	return filepath.Join(dir.QuarantineDir(), fmt.Sprintf("%s.%d.yaml", name, time.Now().UnixNano()))
}
