package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Event types appended by the assessment services.
const (
	QuizStarted        = "QuizStarted"
	GradeRecorded      = "GradeRecorded"
	RubricReviewed     = "RubricReviewed"
	SimilarityComputed = "SimilarityComputed"
	QuizExported       = "QuizExported"
	QuizImported       = "QuizImported"
	BankExported       = "BankExported"
	BankImported       = "BankImported"
)

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

// NewEvent marshals data into an event. Unencodable data is recorded as null.
func NewEvent(typ, key string, data interface{}) Event {
	b, err := json.Marshal(data)
	if err != nil {
		b = []byte("null")
	}
	return Event{SiteID: "local", Type: typ, Key: key, DataJSON: string(b)}
}

// Recorder appends audit events. Failures are reported but never undo the
// operation that produced the event.
type Recorder interface {
	Append(ctx context.Context, e Event) error
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = "local"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// List returns events for key in append order.
func (r *EventRepo) List(ctx context.Context, key string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, typ, key, data, created_at FROM event_log WHERE key=$1 ORDER BY seq`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LogRecorder writes events to the structured log when no SQL database is
// configured.
type LogRecorder struct{ Log *zap.Logger }

func (r LogRecorder) Append(_ context.Context, e Event) error {
	if r.Log != nil {
		r.Log.Info("event", zap.String("type", e.Type), zap.String("key", e.Key), zap.String("data", e.DataJSON))
	}
	return nil
}

// Emit appends e and logs a failure instead of returning it.
func Emit(ctx context.Context, rec Recorder, log *zap.Logger, e Event) {
	if rec == nil {
		return
	}
	if err := rec.Append(ctx, e); err != nil && log != nil {
		log.Warn("event append failed", zap.String("type", e.Type), zap.String("key", e.Key), zap.Error(err))
	}
}
