package tracking

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"backend-rucktracker/internal/db"
	"backend-rucktracker/internal/session"
	"backend-rucktracker/internal/stream"
	"backend-rucktracker/internal/telemetry"

	"github.com/google/uuid"
)

// Service drives live ruck sessions: it owns the registry of session
// engines, persists finalized sessions to Postgres and fans live
// snapshots out through the stream hub. Rejected-too-short sessions are
// deleted instead of saved.
type Service struct {
	db  db.Querier
	mgr *session.Manager
	hub *stream.Hub

	mu        sync.Mutex
	finalized map[string]StopResponse
}

func NewService(database db.Querier, mgr *session.Manager, hub *stream.Hub) *Service {
	return &Service{db: database, mgr: mgr, hub: hub, finalized: map[string]StopResponse{}}
}

func (s *Service) StartSession(ctx context.Context, input StartRequest) (SessionInfo, error) {
	info := SessionInfo{
		ID:           uuid.NewString(),
		UserID:       input.UserID,
		State:        session.StateCollecting,
		UserWeightKg: input.UserWeightKg,
		RuckWeightKg: input.RuckWeightKg,
		StartedAt:    time.Now(),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO ruck_sessions (id, user_id, status, user_weight_kg, ruck_weight_kg, started_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING started_at
	`, info.ID, info.UserID, "in_progress", info.UserWeightKg, info.RuckWeightKg, info.StartedAt)
	if err := row.Scan(&info.StartedAt); err != nil {
		return SessionInfo{}, err
	}

	s.mgr.Start(info.ID, info.UserID, info.UserWeightKg, info.RuckWeightKg, s.broadcast)
	return info, nil
}

// SubmitFix feeds one location fix into a live session. Filter
// rejections are part of the returned result, never an error.
func (s *Service) SubmitFix(id string, fix telemetry.LocationFix) (session.Result, error) {
	engine, err := s.mgr.Get(id)
	if err != nil {
		return session.Result{}, err
	}

	result := engine.SubmitFix(fix)
	// lifecycle events are broadcast by the engine's notify hook; plain
	// accepted fixes still feed the live snapshot stream
	if result.Event == nil && result.Decision.Code == telemetry.Accept {
		s.broadcast(result)
	}
	return result, nil
}

func (s *Service) Pause(id string) (session.Result, error) {
	engine, err := s.mgr.Get(id)
	if err != nil {
		return session.Result{}, err
	}
	return engine.Pause()
}

func (s *Service) Resume(id string) (session.Result, error) {
	engine, err := s.mgr.Get(id)
	if err != nil {
		return session.Result{}, err
	}
	return engine.Resume()
}

// ConfirmIdle resolves a pending idle-timeout. Confirming the end
// finalizes and persists the session like an explicit stop.
func (s *Service) ConfirmIdle(ctx context.Context, id string, end bool) (session.Result, *StopResponse, error) {
	engine, err := s.mgr.Get(id)
	if err != nil {
		return session.Result{}, nil, err
	}

	result, err := engine.ConfirmIdleEnd(end)
	if err != nil {
		return session.Result{}, nil, err
	}
	if result.Event == nil || result.Event.Kind != session.EventEnded {
		return result, nil, nil
	}

	stop := s.finalize(ctx, id, engine)
	return result, &stop, nil
}

// Stop finalizes a session on user request. Stopping an already ended
// session returns the same finalized result instead of a lookup error.
func (s *Service) Stop(ctx context.Context, id string) (StopResponse, error) {
	engine, err := s.mgr.Get(id)
	if err != nil {
		s.mu.Lock()
		resp, ok := s.finalized[id]
		s.mu.Unlock()
		if ok {
			return resp, nil
		}
		return StopResponse{}, err
	}
	return s.finalize(ctx, id, engine), nil
}

func (s *Service) Snapshot(id string) (session.SnapshotView, error) {
	engine, err := s.mgr.Get(id)
	if err != nil {
		return session.SnapshotView{}, err
	}
	return engine.Snapshot(), nil
}

func (s *Service) finalize(ctx context.Context, id string, engine *session.Engine) StopResponse {
	final := engine.Stop()
	s.mgr.Remove(id)

	resp := StopResponse{Session: final, Saved: final.Savable()}
	s.mu.Lock()
	s.finalized[id] = resp
	s.mu.Unlock()

	if !final.Savable() {
		// too short: discard the row rather than persist a junk session
		if _, err := s.db.Exec(ctx, `DELETE FROM ruck_sessions WHERE id=$1`, id); err != nil {
			log.Printf("session %s: discard failed: %v", id, err)
		}
		return resp
	}

	_, err := s.db.Exec(ctx, `
		UPDATE ruck_sessions
		SET status='completed',
		    completed_at=$2,
		    duration_seconds=$3,
		    distance_km=$4,
		    elevation_gain_m=$5,
		    elevation_loss_m=$6,
		    calories_burned=$7,
		    average_pace_sec_km=$8,
		    end_reason=$9
		WHERE id=$1
	`, id, final.EndedAt, int64(final.ActiveDuration.Seconds()), final.DistanceM/1000,
		final.ElevationGainM, final.ElevationLossM, final.Calories, final.AvgPaceSecPerKm,
		string(final.Reason))
	if err != nil {
		// persistence failures are logged, not retried here; retry policy
		// belongs to the storage layer
		log.Printf("session %s: persist failed: %v", id, err)
	}
	return resp
}

func (s *Service) broadcast(r session.Result) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(r)
	if err != nil {
		log.Printf("session %s: marshal broadcast: %v", r.SessionID, err)
		return
	}
	s.hub.Broadcast(r.SessionID, payload)
}
