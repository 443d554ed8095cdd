package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
)

// RecordListen appends a play record for a track. Plain insert only;
// aggregation is left to external tooling.
func (s *Store) RecordListen(ctx context.Context, trackID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO listens (track_id) VALUES (?)`, trackID)
	return errors.Wrap(err, "failed to record listen")
}

// ListenCount returns the number of recorded plays for a track.
func (s *Store) ListenCount(ctx context.Context, trackID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listens WHERE track_id = ?`, trackID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count listens")
	}
	return n, nil
}
