// Package sqlite provides a SQLite-backed gathering storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/mirefield/gatherspace/internal/platform/storage/sqlitemigrate"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/rsvp"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists gathering state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite gathering store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateGathering inserts one gathering record.
func (s *Store) CreateGathering(ctx context.Context, gathering storage.Gathering) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gatheringID := strings.TrimSpace(gathering.GatheringID)
	orgID := strings.TrimSpace(gathering.OrgID)
	createdBy := strings.TrimSpace(gathering.CreatedBy)
	if gatheringID == "" {
		return fmt.Errorf("gathering id is required")
	}
	if orgID == "" {
		return fmt.Errorf("org id is required")
	}
	if createdBy == "" {
		return fmt.Errorf("created by is required")
	}
	if gathering.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	status := gathering.Status
	if status == "" {
		status = storage.GatheringStatusDraft
	}

	hostIDs, err := encodeIDs(gathering.HostIDs)
	if err != nil {
		return fmt.Errorf("encode host ids: %w", err)
	}
	mentorIDs, err := encodeIDs(gathering.MentorIDs)
	if err != nil {
		return fmt.Errorf("encode mentor ids: %w", err)
	}

	createdAt := gathering.CreatedAt.UTC()
	updatedAt := gathering.UpdatedAt.UTC()
	if createdAt.IsZero() && updatedAt.IsZero() {
		createdAt = time.Now().UTC()
		updatedAt = createdAt
	} else {
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO gatherings (
		   gathering_id,
		   org_id,
		   created_by,
		   status,
		   experience_type_label,
		   title,
		   host_ids,
		   scribe_id,
		   start_time,
		   end_time,
		   remote,
		   address,
		   meeting_link,
		   location_tbd,
		   mentor_ids,
		   description,
		   capacity,
		   created_at,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gatheringID,
		orgID,
		createdBy,
		string(status),
		strings.TrimSpace(gathering.ExperienceTypeLabel),
		strings.TrimSpace(gathering.Title),
		hostIDs,
		strings.TrimSpace(gathering.ScribeID),
		nullableMillis(gathering.StartTime),
		nullableMillis(gathering.EndTime),
		nullableBool(gathering.Remote),
		strings.TrimSpace(gathering.Address),
		strings.TrimSpace(gathering.MeetingLink),
		boolToInt(gathering.LocationTBD),
		mentorIDs,
		strings.TrimSpace(gathering.Description),
		gathering.Capacity,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert gathering: %w", err)
	}
	return nil
}

// GetGathering loads one gathering record.
func (s *Store) GetGathering(ctx context.Context, gatheringID string) (storage.Gathering, error) {
	if err := ctx.Err(); err != nil {
		return storage.Gathering{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Gathering{}, fmt.Errorf("storage is not configured")
	}
	gatheringID = strings.TrimSpace(gatheringID)
	if gatheringID == "" {
		return storage.Gathering{}, fmt.Errorf("gathering id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT gathering_id, org_id, created_by, status, experience_type_label,
		        title, host_ids, scribe_id, start_time, end_time, remote,
		        address, meeting_link, location_tbd, mentor_ids, description,
		        capacity, created_at, updated_at
		   FROM gatherings
		  WHERE gathering_id = ?`,
		gatheringID,
	)
	return scanGathering(row)
}

// UpdateSetupFields applies one setup item's field patch to a gathering.
//
// Only the patch members that are set are written; the write is idempotent so
// a retried save after a transport failure converges on the same row.
func (s *Store) UpdateSetupFields(ctx context.Context, gatheringID string, patch storage.SetupFieldPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gatheringID = strings.TrimSpace(gatheringID)
	if gatheringID == "" {
		return fmt.Errorf("gathering id is required")
	}

	assignments := make([]string, 0, 12)
	args := make([]any, 0, 13)

	appendSet := func(column string, value any) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}

	if patch.ExperienceTypeLabel != nil {
		appendSet("experience_type_label", strings.TrimSpace(*patch.ExperienceTypeLabel))
	}
	if patch.Title != nil {
		appendSet("title", strings.TrimSpace(*patch.Title))
	}
	if patch.HostIDs != nil {
		encoded, err := encodeIDs(patch.HostIDs)
		if err != nil {
			return fmt.Errorf("encode host ids: %w", err)
		}
		appendSet("host_ids", encoded)
	}
	if patch.ScribeID != nil {
		appendSet("scribe_id", strings.TrimSpace(*patch.ScribeID))
	}
	if patch.StartTime != nil {
		appendSet("start_time", toMillis(*patch.StartTime))
	}
	if patch.EndTime != nil {
		appendSet("end_time", toMillis(*patch.EndTime))
	}
	if patch.Remote != nil {
		appendSet("remote", boolToInt(*patch.Remote))
	}
	if patch.Address != nil {
		appendSet("address", strings.TrimSpace(*patch.Address))
	}
	if patch.MeetingLink != nil {
		appendSet("meeting_link", strings.TrimSpace(*patch.MeetingLink))
	}
	if patch.LocationTBD != nil {
		appendSet("location_tbd", boolToInt(*patch.LocationTBD))
	}
	if patch.MentorIDs != nil {
		encoded, err := encodeIDs(patch.MentorIDs)
		if err != nil {
			return fmt.Errorf("encode mentor ids: %w", err)
		}
		appendSet("mentor_ids", encoded)
	}
	if patch.Description != nil {
		appendSet("description", strings.TrimSpace(*patch.Description))
	}
	if len(assignments) == 0 {
		return nil
	}
	appendSet("updated_at", toMillis(time.Now()))
	args = append(args, gatheringID)

	result, err := s.sqlDB.ExecContext(
		ctx,
		"UPDATE gatherings SET "+strings.Join(assignments, ", ")+" WHERE gathering_id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("update setup fields: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetGatheringStatus updates one gathering's lifecycle status.
func (s *Store) SetGatheringStatus(ctx context.Context, gatheringID string, status storage.GatheringStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gatheringID = strings.TrimSpace(gatheringID)
	if gatheringID == "" {
		return fmt.Errorf("gathering id is required")
	}
	if status == "" {
		return fmt.Errorf("status is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		"UPDATE gatherings SET status = ?, updated_at = ? WHERE gathering_id = ?",
		string(status),
		toMillis(time.Now()),
		gatheringID,
	)
	if err != nil {
		return fmt.Errorf("update gathering status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListGatheringsByHost lists gatherings whose host list contains the user.
func (s *Store) ListGatheringsByHost(ctx context.Context, hostUserID string) ([]storage.Gathering, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	hostUserID = strings.TrimSpace(hostUserID)
	if hostUserID == "" {
		return nil, fmt.Errorf("host user id is required")
	}

	// Host ids are stored as a JSON array; membership is matched on the
	// quoted element to avoid substring collisions between ids.
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT gathering_id, org_id, created_by, status, experience_type_label,
		        title, host_ids, scribe_id, start_time, end_time, remote,
		        address, meeting_link, location_tbd, mentor_ids, description,
		        capacity, created_at, updated_at
		   FROM gatherings
		  WHERE instr(host_ids, ?) > 0
		  ORDER BY created_at DESC, gathering_id`,
		`"`+hostUserID+`"`,
	)
	if err != nil {
		return nil, fmt.Errorf("query gatherings by host: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var gatherings []storage.Gathering
	for rows.Next() {
		gathering, err := scanGathering(rows)
		if err != nil {
			return nil, err
		}
		gatherings = append(gatherings, gathering)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gatherings: %w", err)
	}
	return gatherings, nil
}

// ResolveRSVP resolves one member's requested response against capacity and
// upserts the outcome.
//
// The count of confirmed attendees and the write run under one transaction,
// so two concurrent "going" requests cannot both take the last spot. The
// member's own current row is excluded from the count, so a confirmed
// attendee repeating "going" keeps their spot. Capacity zero or below means
// unbounded.
func (s *Store) ResolveRSVP(ctx context.Context, record storage.RSVP, capacity int) (storage.RSVP, error) {
	if err := ctx.Err(); err != nil {
		return storage.RSVP{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RSVP{}, fmt.Errorf("storage is not configured")
	}
	gatheringID := strings.TrimSpace(record.GatheringID)
	userID := strings.TrimSpace(record.UserID)
	if gatheringID == "" {
		return storage.RSVP{}, fmt.Errorf("gathering id is required")
	}
	if userID == "" {
		return storage.RSVP{}, fmt.Errorf("user id is required")
	}

	respondedAt := record.RespondedAt.UTC()
	if respondedAt.IsZero() {
		respondedAt = time.Now().UTC()
	}
	updatedAt := record.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = respondedAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.RSVP{}, fmt.Errorf("begin rsvp write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback rsvp write: %v", cause, rollbackErr)
		}
		return cause
	}

	current := rsvp.StatusUnspecified
	var currentLabel string
	row := tx.QueryRowContext(
		ctx,
		"SELECT status FROM rsvps WHERE gathering_id = ? AND user_id = ?",
		gatheringID,
		userID,
	)
	if err := row.Scan(&currentLabel); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return storage.RSVP{}, rollbackWith(fmt.Errorf("scan current rsvp: %w", err))
		}
	} else {
		current = rsvp.Status(currentLabel)
	}

	spotsLeft := 1
	if capacity > 0 {
		var going int
		row := tx.QueryRowContext(
			ctx,
			"SELECT COUNT(*) FROM rsvps WHERE gathering_id = ? AND status = ? AND user_id <> ?",
			gatheringID,
			string(rsvp.StatusGoing),
			userID,
		)
		if err := row.Scan(&going); err != nil {
			return storage.RSVP{}, rollbackWith(fmt.Errorf("count going: %w", err))
		}
		spotsLeft = capacity - going
	}

	resolved, err := rsvp.Decide(current, record.Status, spotsLeft)
	if err != nil {
		return storage.RSVP{}, rollbackWith(err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO rsvps (gathering_id, user_id, status, responded_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (gathering_id, user_id)
		 DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		gatheringID,
		userID,
		string(resolved),
		toMillis(respondedAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return storage.RSVP{}, rollbackWith(fmt.Errorf("upsert rsvp: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return storage.RSVP{}, fmt.Errorf("commit rsvp write: %w", err)
	}

	record.GatheringID = gatheringID
	record.UserID = userID
	record.Status = resolved
	record.RespondedAt = respondedAt
	record.UpdatedAt = updatedAt
	return record, nil
}

// PutRSVP upserts one member's attendance response.
func (s *Store) PutRSVP(ctx context.Context, record storage.RSVP) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gatheringID := strings.TrimSpace(record.GatheringID)
	userID := strings.TrimSpace(record.UserID)
	if gatheringID == "" {
		return fmt.Errorf("gathering id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if record.Status == rsvp.StatusUnspecified {
		return fmt.Errorf("rsvp status is required")
	}

	respondedAt := record.RespondedAt.UTC()
	if respondedAt.IsZero() {
		respondedAt = time.Now().UTC()
	}
	updatedAt := record.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = respondedAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rsvps (gathering_id, user_id, status, responded_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (gathering_id, user_id)
		 DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		gatheringID,
		userID,
		string(record.Status),
		toMillis(respondedAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert rsvp: %w", err)
	}
	return nil
}

// GetRSVP loads one member's attendance response.
func (s *Store) GetRSVP(ctx context.Context, gatheringID string, userID string) (storage.RSVP, error) {
	if err := ctx.Err(); err != nil {
		return storage.RSVP{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RSVP{}, fmt.Errorf("storage is not configured")
	}
	gatheringID = strings.TrimSpace(gatheringID)
	userID = strings.TrimSpace(userID)
	if gatheringID == "" {
		return storage.RSVP{}, fmt.Errorf("gathering id is required")
	}
	if userID == "" {
		return storage.RSVP{}, fmt.Errorf("user id is required")
	}

	var (
		record      storage.RSVP
		status      string
		respondedAt int64
		updatedAt   int64
	)
	row := s.sqlDB.QueryRowContext(
		ctx,
		"SELECT gathering_id, user_id, status, responded_at, updated_at FROM rsvps WHERE gathering_id = ? AND user_id = ?",
		gatheringID,
		userID,
	)
	err := row.Scan(&record.GatheringID, &record.UserID, &status, &respondedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RSVP{}, storage.ErrNotFound
		}
		return storage.RSVP{}, fmt.Errorf("scan rsvp: %w", err)
	}
	record.Status = rsvp.Status(status)
	record.RespondedAt = fromMillis(respondedAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// ListRSVPs lists attendance responses for one gathering.
func (s *Store) ListRSVPs(ctx context.Context, gatheringID string) ([]storage.RSVP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	gatheringID = strings.TrimSpace(gatheringID)
	if gatheringID == "" {
		return nil, fmt.Errorf("gathering id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		"SELECT gathering_id, user_id, status, responded_at, updated_at FROM rsvps WHERE gathering_id = ? ORDER BY responded_at, user_id",
		gatheringID,
	)
	if err != nil {
		return nil, fmt.Errorf("query rsvps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []storage.RSVP
	for rows.Next() {
		var (
			record      storage.RSVP
			status      string
			respondedAt int64
			updatedAt   int64
		)
		if err := rows.Scan(&record.GatheringID, &record.UserID, &status, &respondedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		record.Status = rsvp.Status(status)
		record.RespondedAt = fromMillis(respondedAt)
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rsvps: %w", err)
	}
	return records, nil
}

// CountGoing counts confirmed attendees for one gathering.
func (s *Store) CountGoing(ctx context.Context, gatheringID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	gatheringID = strings.TrimSpace(gatheringID)
	if gatheringID == "" {
		return 0, fmt.Errorf("gathering id is required")
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM rsvps WHERE gathering_id = ? AND status = ?",
		gatheringID,
		string(rsvp.StatusGoing),
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count going: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGathering(row rowScanner) (storage.Gathering, error) {
	var (
		gathering   storage.Gathering
		status      string
		hostIDs     string
		mentorIDs   string
		startTime   sql.NullInt64
		endTime     sql.NullInt64
		remote      sql.NullInt64
		locationTBD int64
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(
		&gathering.GatheringID,
		&gathering.OrgID,
		&gathering.CreatedBy,
		&status,
		&gathering.ExperienceTypeLabel,
		&gathering.Title,
		&hostIDs,
		&gathering.ScribeID,
		&startTime,
		&endTime,
		&remote,
		&gathering.Address,
		&gathering.MeetingLink,
		&locationTBD,
		&mentorIDs,
		&gathering.Description,
		&gathering.Capacity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Gathering{}, storage.ErrNotFound
		}
		return storage.Gathering{}, fmt.Errorf("scan gathering: %w", err)
	}

	gathering.Status = storage.GatheringStatus(status)
	gathering.LocationTBD = locationTBD != 0
	gathering.CreatedAt = fromMillis(createdAt)
	gathering.UpdatedAt = fromMillis(updatedAt)
	if startTime.Valid {
		value := fromMillis(startTime.Int64)
		gathering.StartTime = &value
	}
	if endTime.Valid {
		value := fromMillis(endTime.Int64)
		gathering.EndTime = &value
	}
	if remote.Valid {
		value := remote.Int64 != 0
		gathering.Remote = &value
	}
	if gathering.HostIDs, err = decodeIDs(hostIDs); err != nil {
		return storage.Gathering{}, fmt.Errorf("decode host ids: %w", err)
	}
	if gathering.MentorIDs, err = decodeIDs(mentorIDs); err != nil {
		return storage.Gathering{}, fmt.Errorf("decode mentor ids: %w", err)
	}
	return gathering, nil
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeIDs(encoded string) ([]string, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(encoded), &ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

func nullableMillis(value *time.Time) any {
	if value == nil {
		return nil
	}
	return toMillis(*value)
}

func nullableBool(value *bool) any {
	if value == nil {
		return nil
	}
	return boolToInt(*value)
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed")
}

var _ storage.GatheringStore = (*Store)(nil)
var _ storage.RSVPStore = (*Store)(nil)
