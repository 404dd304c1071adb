package history

import (
	"context"

	"backend-rucktracker/internal/db"
)

// Service reads completed sessions back out of Postgres. Live sessions
// never show up here; rows only reach 'completed' through the tracking
// service's finalize path.
type Service struct {
	db db.Querier
}

func NewService(database db.Querier) *Service {
	return &Service{db: database}
}

const sessionColumns = `
	id, user_id, status, COALESCE(user_weight_kg,0), COALESCE(ruck_weight_kg,0),
	started_at, completed_at, COALESCE(duration_seconds,0), COALESCE(distance_km,0),
	COALESCE(elevation_gain_m,0), COALESCE(elevation_loss_m,0),
	COALESCE(calories_burned,0), COALESCE(average_pace_sec_km,0), COALESCE(end_reason,'')`

func (s *Service) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+sessionColumns+`
		FROM ruck_sessions
		WHERE user_id=$1 AND status='completed'
		ORDER BY completed_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Status, &sess.UserWeightKg, &sess.RuckWeightKg,
			&sess.StartedAt, &sess.CompletedAt, &sess.DurationSeconds, &sess.DistanceKm,
			&sess.ElevationGainM, &sess.ElevationLossM, &sess.CaloriesBurned,
			&sess.AvgPaceSecPerKm, &sess.EndReason); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT`+sessionColumns+`
		FROM ruck_sessions WHERE id=$1
	`, id)

	var sess Session
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.Status, &sess.UserWeightKg, &sess.RuckWeightKg,
		&sess.StartedAt, &sess.CompletedAt, &sess.DurationSeconds, &sess.DistanceKm,
		&sess.ElevationGainM, &sess.ElevationLossM, &sess.CaloriesBurned,
		&sess.AvgPaceSecPerKm, &sess.EndReason); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM ruck_sessions WHERE id=$1`, id)
	return err
}
