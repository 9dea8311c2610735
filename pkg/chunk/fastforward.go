package chunk

import "fmt"

// LegacyVersionV1 is an older chunk format tag. v1 chunks predate shape
// normalization (section 4.3): a scalar sample could be recorded with a
// zero-dimensional shape instead of being widened to (1,). FastForward
// upgrades that in place.
const LegacyVersionV1 = "1.0.0"

type migration struct {
	from, to string
	apply    func(*state) error
}

var migrations = []migration{
	{from: LegacyVersionV1, to: CurrentVersion, apply: ffwV1ToV2},
}

// FastForward upgrades a chunk's encoders and data to CurrentVersion,
// applying whatever chain of version-to-version transformations is
// needed. It is idempotent: a chunk already at CurrentVersion is a no-op.
func FastForward(s *state) error {
	for s.Version != CurrentVersion {
		applied := false
		for _, m := range migrations {
			if s.Version == m.from {
				if err := m.apply(s); err != nil {
					return fmt.Errorf("chunk: fast-forward %s -> %s: %w", m.from, m.to, err)
				}
				s.Version = m.to
				applied = true
				break
			}
		}
		if !applied {
			return fmt.Errorf("chunk: no fast-forward path from version %q to %q", s.Version, CurrentVersion)
		}
	}
	return nil
}

func ffwV1ToV2(s *state) error {
	s.Shapes.NormalizeEmptyShapes()
	return nil
}
