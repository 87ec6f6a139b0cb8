package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// Schema is the DDL for the submissions table. Applied by deploy tooling and
// by the integration test container.
const Schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id                   UUID PRIMARY KEY,
	user_id              UUID NOT NULL UNIQUE,
	business_name        TEXT NOT NULL,
	business_info        JSONB NOT NULL,
	owner_identity       JSONB NOT NULL,
	business_docs        JSONB NOT NULL,
	status               TEXT NOT NULL,
	submitted_at         TIMESTAMPTZ NOT NULL,
	reviewed_at          TIMESTAMPTZ,
	reviewed_by          TEXT NOT NULL DEFAULT '',
	rejection_reason     TEXT NOT NULL DEFAULT '',
	submitter_ip         TEXT NOT NULL DEFAULT '',
	submitter_user_agent TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS submissions_status_idx ON submissions (status);
`

// PostgresStore persists submissions in PostgreSQL. This store is pure I/O;
// lifecycle rules live in the models and service layers.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed submission store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, sub *models.Submission) error {
	info, identity, docs, err := encodeBuckets(sub)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions (
			id, user_id, business_name, business_info, owner_identity, business_docs,
			status, submitted_at, reviewed_at, reviewed_by, rejection_reason,
			submitter_ip, submitter_user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.pool.Exec(ctx, query,
		uuid.UUID(sub.ID),
		uuid.UUID(sub.UserID),
		sub.BusinessName,
		info,
		identity,
		docs,
		string(sub.Status),
		sub.SubmittedAt,
		sub.ReviewedAt,
		sub.ReviewedBy,
		sub.RejectionReason,
		sub.SubmitterIP,
		sub.SubmitterUserAgent,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 unique_violation: the user already has a submission.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, sub *models.Submission) error {
	info, identity, docs, err := encodeBuckets(sub)
	if err != nil {
		return err
	}

	query := `
		UPDATE submissions SET
			business_name = $2,
			business_info = $3,
			owner_identity = $4,
			business_docs = $5,
			status = $6,
			submitted_at = $7,
			reviewed_at = $8,
			reviewed_by = $9,
			rejection_reason = $10,
			submitter_ip = $11,
			submitter_user_agent = $12
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		uuid.UUID(sub.ID),
		sub.BusinessName,
		info,
		identity,
		docs,
		string(sub.Status),
		sub.SubmittedAt,
		sub.ReviewedAt,
		sub.ReviewedBy,
		sub.RejectionReason,
		sub.SubmitterIP,
		sub.SubmitterUserAgent,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID id.UserID) (*models.Submission, error) {
	return s.findBy(ctx, `user_id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error) {
	return s.findBy(ctx, `id = $1`, uuid.UUID(subID))
}

func (s *PostgresStore) findBy(ctx context.Context, where string, arg any) (*models.Submission, error) {
	query := `
		SELECT id, user_id, business_name, business_info, owner_identity, business_docs,
		       status, submitted_at, reviewed_at, reviewed_by, rejection_reason,
		       submitter_ip, submitter_user_agent
		FROM submissions
		WHERE ` + where

	var (
		sub        models.Submission
		subID      uuid.UUID
		subUserID  uuid.UUID
		info       []byte
		identity   []byte
		docs       []byte
		status     string
		reviewedAt *time.Time
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&subID,
		&subUserID,
		&sub.BusinessName,
		&info,
		&identity,
		&docs,
		&status,
		&sub.SubmittedAt,
		&reviewedAt,
		&sub.ReviewedBy,
		&sub.RejectionReason,
		&sub.SubmitterIP,
		&sub.SubmitterUserAgent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}

	sub.ID = id.SubmissionID(subID)
	sub.UserID = id.UserID(subUserID)
	sub.ReviewedAt = reviewedAt

	parsed, err := models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	sub.Status = parsed

	if err := json.Unmarshal(info, &sub.BusinessInfo); err != nil {
		return nil, fmt.Errorf("decode business info: %w", err)
	}
	if err := json.Unmarshal(identity, &sub.OwnerIdentity); err != nil {
		return nil, fmt.Errorf("decode owner identity: %w", err)
	}
	if err := json.Unmarshal(docs, &sub.BusinessDocs); err != nil {
		return nil, fmt.Errorf("decode business docs: %w", err)
	}

	return &sub, nil
}

func encodeBuckets(sub *models.Submission) (info, identity, docs []byte, err error) {
	if info, err = json.Marshal(sub.BusinessInfo); err != nil {
		return nil, nil, nil, fmt.Errorf("encode business info: %w", err)
	}
	if identity, err = json.Marshal(sub.OwnerIdentity); err != nil {
		return nil, nil, nil, fmt.Errorf("encode owner identity: %w", err)
	}
	if docs, err = json.Marshal(sub.BusinessDocs); err != nil {
		return nil, nil, nil, fmt.Errorf("encode business docs: %w", err)
	}
	return info, identity, docs, nil
}
