package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

const activeSessionKey = "active_session"

// activeRecord is the persisted shape of the active session. Timestamps are
// epoch milliseconds so elapsed-time math survives serialization unchanged.
type activeRecord struct {
	TaskID        *string         `json:"taskId"`
	StartTime     int64           `json:"startTime"`
	PauseSegments []segmentRecord `json:"pauseSegments"`
	LastTick      int64           `json:"lastTickTimestamp"`
}

type segmentRecord struct {
	Start int64  `json:"start"`
	End   *int64 `json:"end"`
}

// LoadActive returns the persisted active session, or nil when none is stored.
// Malformed state is reported as an error.
func (s *Store) LoadActive(ctx context.Context) (*model.ActiveSession, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, activeSessionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeActive([]byte(raw))
}

// SaveActive persists the active session; nil clears it.
func (s *Store) SaveActive(ctx context.Context, active *model.ActiveSession) error {
	if active == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, activeSessionKey)
		return err
	}
	data, err := EncodeActive(active)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		activeSessionKey, string(data))
	return err
}

// EncodeActive serializes an active session to its persisted JSON form.
func EncodeActive(active *model.ActiveSession) ([]byte, error) {
	rec := activeRecord{
		StartTime:     active.StartTime.UnixMilli(),
		LastTick:      active.LastTick.UnixMilli(),
		PauseSegments: make([]segmentRecord, 0, len(active.PauseSegments)),
	}
	if id, ok := active.Task.ID(); ok {
		rec.TaskID = &id
	}
	for _, seg := range active.PauseSegments {
		sr := segmentRecord{Start: seg.Start.UnixMilli()}
		if seg.End != nil {
			end := seg.End.UnixMilli()
			sr.End = &end
		}
		rec.PauseSegments = append(rec.PauseSegments, sr)
	}
	return json.Marshal(rec)
}

// DecodeActive parses persisted JSON. A literal null decodes to nil.
func DecodeActive(data []byte) (*model.ActiveSession, error) {
	var rec *activeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode active session: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	if rec.StartTime <= 0 || rec.LastTick <= 0 {
		return nil, fmt.Errorf("active session has missing timestamps")
	}
	active := &model.ActiveSession{
		StartTime:     time.UnixMilli(rec.StartTime),
		LastTick:      time.UnixMilli(rec.LastTick),
		PauseSegments: make([]model.PauseSegment, 0, len(rec.PauseSegments)),
	}
	if rec.TaskID != nil && *rec.TaskID != "" {
		active.Task = model.Assigned(*rec.TaskID)
	}
	for i, sr := range rec.PauseSegments {
		seg := model.PauseSegment{Start: time.UnixMilli(sr.Start)}
		if sr.End == nil {
			if i != len(rec.PauseSegments)-1 {
				return nil, fmt.Errorf("open pause segment %d is not the last segment", i)
			}
		} else {
			if *sr.End < sr.Start {
				return nil, fmt.Errorf("pause segment %d ends before it starts", i)
			}
			end := time.UnixMilli(*sr.End)
			seg.End = &end
		}
		active.PauseSegments = append(active.PauseSegments, seg)
	}
	return active, nil
}
