package ruleset

import (
	"github.com/cockroachdb/errors"
	"sigs.k8s.io/yaml"

	"GoLex/internal/storage"
)

// Marshal serializes a rule set to YAML and stamps its checksum.
func Marshal(rs *Ruleset) ([]byte, error) {
	checksum, err := computeChecksum(rs)
	if err != nil {
		return nil, err
	}
	rs.Checksum = checksum

	data, err := yaml.Marshal(rs)
	if err != nil {
		return nil, errors.Wrap(err, "marshal rule set")
	}
	return data, nil
}

// Unmarshal decodes a stored rule set and verifies its checksum.
func Unmarshal(data []byte) (*Ruleset, error) {
	rs, err := decode(data)
	if err != nil {
		return nil, err
	}
	if rs.Checksum == "" {
		return nil, errors.Wrap(ErrRulesetCorrupt, "missing checksum")
	}
	if err := verify(rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Parse decodes a hand-written rule set (YAML or JSON) and validates it.
// A checksum is verified when present but not required.
func Parse(data []byte) (*Ruleset, error) {
	rs, err := decode(data)
	if err != nil {
		return nil, err
	}
	if rs.Checksum != "" {
		if err := verify(rs); err != nil {
			return nil, err
		}
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func decode(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.UnmarshalStrict(data, &rs); err != nil {
		return nil, errors.Wrap(err, "unmarshal rule set")
	}
	return &rs, nil
}

// verify reports ErrRulesetCorrupt when rs does not hash to its stamped
// checksum. A malformed checksum also matches storage.ErrInvalidChecksum and
// a mismatch storage.ErrChecksumMismatch.
func verify(rs *Ruleset) error {
	data, err := checksumInput(rs)
	if err != nil {
		return err
	}
	if err := rs.Checksum.Verify(data); err != nil {
		return errors.Mark(errors.Wrapf(err, "rule set %q", rs.Name), ErrRulesetCorrupt)
	}
	return nil
}

func computeChecksum(rs *Ruleset) (storage.Checksum, error) {
	data, err := checksumInput(rs)
	if err != nil {
		return "", err
	}
	return storage.ComputeChecksum(data), nil
}

// checksumInput is the YAML form of rs with the checksum field blanked.
func checksumInput(rs *Ruleset) ([]byte, error) {
	saved := rs.Checksum
	rs.Checksum = ""
	defer func() { rs.Checksum = saved }()

	data, err := yaml.Marshal(rs)
	if err != nil {
		return nil, errors.Wrap(err, "marshal for checksum")
	}
	return data, nil
}
