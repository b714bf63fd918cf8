package sessionrepository

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/cheevo/internal/adapters/database"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/reporting"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SQL stores sessions in postgres or sqlite. Times are stored as unix milliseconds.
type SQL struct {
	db      *sqlx.DB
	dialect database.Dialect
	schema  string
	tracer  trace.Tracer
	nowFunc func() time.Time
}

func NewSQL(db *sqlx.DB, dialect database.Dialect, schema string, nowFunc func() time.Time) *SQL {
	tracer := otel.Tracer("cheevo/sessionrepository/sql")
	return &SQL{
		db:      db,
		dialect: dialect,
		schema:  schema,
		tracer:  tracer,
		nowFunc: nowFunc,
	}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// query qualifies the %[1]s... table placeholders and rebinds ? placeholders for the dialect
func (s *SQL) query(format string, tables ...string) string {
	args := make([]any, len(tables))
	for i, table := range tables {
		args[i] = s.dialect.Table(s.schema, table)
	}
	return sqlx.Rebind(s.dialect.BindType(), fmt.Sprintf(format, args...))
}

type dbUser struct {
	Username    string `db:"username"`
	FirstSeenAt int64  `db:"first_seen_at"`
	LastSeenAt  int64  `db:"last_seen_at"`
	SeenCount   int64  `db:"seen_count"`
}

func (s *SQL) RegisterUser(ctx context.Context, username string) (domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "SQL.RegisterUser")
	defer span.End()

	if username == "" {
		err := fmt.Errorf("username is empty")
		reporting.Report(ctx, err)
		return domain.User{}, err
	}

	now := toMillis(s.nowFunc())

	var user dbUser
	err := s.db.QueryRowxContext(
		ctx,
		s.query(`INSERT INTO %[1]s
		(username, first_seen_at, last_seen_at, seen_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (username)
		DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			seen_count = users.seen_count + 1
		RETURNING username, first_seen_at, last_seen_at, seen_count`, "users"),
		username,
		now,
		now,
	).StructScan(&user)
	if err != nil {
		err := fmt.Errorf("failed to insert or update user: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username": username,
		})
		return domain.User{}, err
	}

	return domain.User{
		Username:    user.Username,
		FirstSeenAt: fromMillis(user.FirstSeenAt),
		LastSeenAt:  fromMillis(user.LastSeenAt),
		SeenCount:   user.SeenCount,
	}, nil
}

func (s *SQL) StartSession(ctx context.Context, username string, gameID uint32) (domain.GameSession, error) {
	ctx, span := s.tracer.Start(ctx, "SQL.StartSession")
	defer span.End()

	session := domain.GameSession{
		ID:        uuid.NewString(),
		Username:  username,
		GameID:    gameID,
		StartedAt: fromMillis(toMillis(s.nowFunc())),
	}

	_, err := s.db.ExecContext(
		ctx,
		s.query(`INSERT INTO %[1]s (id, username, game_id, started_at) VALUES (?, ?, ?, ?)`, "game_sessions"),
		session.ID,
		session.Username,
		int64(session.GameID),
		toMillis(session.StartedAt),
	)
	if err != nil {
		err := fmt.Errorf("failed to insert session: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username": username,
			"gameID":   fmt.Sprint(gameID),
		})
		return domain.GameSession{}, err
	}

	return session, nil
}

func (s *SQL) RecordUnlock(ctx context.Context, unlock domain.Unlock) error {
	ctx, span := s.tracer.Start(ctx, "SQL.RecordUnlock")
	defer span.End()

	_, err := s.db.ExecContext(
		ctx,
		s.query(`INSERT INTO %[1]s
		(username, game_id, achievement_id, hardcore, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username, game_id, achievement_id, hardcore) DO NOTHING`, "unlocks"),
		unlock.Username,
		int64(unlock.GameID),
		int64(unlock.AchievementID),
		unlock.Hardcore,
		toMillis(unlock.UnlockedAt),
	)
	if err != nil {
		err := fmt.Errorf("failed to insert unlock: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username":      unlock.Username,
			"achievementID": fmt.Sprint(unlock.AchievementID),
		})
		return err
	}

	return nil
}

func (s *SQL) GetUnlocks(ctx context.Context, username string, gameID uint32, hardcore bool) ([]uint32, error) {
	ctx, span := s.tracer.Start(ctx, "SQL.GetUnlocks")
	defer span.End()

	var ids []int64
	err := s.db.SelectContext(
		ctx,
		&ids,
		s.query(`SELECT achievement_id FROM %[1]s
		WHERE username = ? AND game_id = ? AND hardcore = ?
		ORDER BY achievement_id`, "unlocks"),
		username,
		int64(gameID),
		hardcore,
	)
	if err != nil {
		err := fmt.Errorf("failed to select unlocks: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	unlocked := make([]uint32, 0, len(ids))
	for _, id := range ids {
		unlocked = append(unlocked, uint32(id))
	}
	return unlocked, nil
}

var _ SessionRepository = (*SQL)(nil)
