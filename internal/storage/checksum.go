package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

// ChecksumPrefix marks the hash algorithm of a Checksum.
const ChecksumPrefix = "sha256:"

// Checksum is a hex-encoded SHA-256 hash with the "sha256:" prefix.
type Checksum string

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidChecksum  = errors.New("invalid checksum format")
)

// ComputeChecksum hashes data.
func ComputeChecksum(data []byte) Checksum {
	sum := sha256.Sum256(data)
	return Checksum(ChecksumPrefix + hex.EncodeToString(sum[:]))
}

// Validate checks the prefix and that the rest is 64 hex digits.
func (c Checksum) Validate() error {
	s := string(c)
	if !strings.HasPrefix(s, ChecksumPrefix) {
		return errors.Wrapf(ErrInvalidChecksum, "missing prefix %q", ChecksumPrefix)
	}
	digest := s[len(ChecksumPrefix):]
	if len(digest) != 2*sha256.Size {
		return errors.Wrapf(ErrInvalidChecksum, "expected %d hex chars, got %d", 2*sha256.Size, len(digest))
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return errors.Wrapf(ErrInvalidChecksum, "invalid hex: %v", err)
	}
	return nil
}

// Verify reports ErrChecksumMismatch unless data hashes to c.
func (c Checksum) Verify(data []byte) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if got := ComputeChecksum(data); got != c {
		return errors.Wrapf(ErrChecksumMismatch, "expected %s, got %s", c, got)
	}
	return nil
}
