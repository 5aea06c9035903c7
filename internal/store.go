package internal

import (
	"context"
	"fmt"

	"campus-assets-api/pkg/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
)

// resourceStore persists parsed upload records through the pgx pool. It is
// the database side of the ingestion pipeline; handlers construct one per
// upload.
type resourceStore struct {
	pool *pgxpool.Pool
}

func newResourceStore(pool *pgxpool.Pool) *resourceStore {
	return &resourceStore{pool: pool}
}

// Insert writes one record stamped with the upload metadata.
func (rs *resourceStore) Insert(ctx context.Context, rec ingest.Record, meta ingest.Meta) error {
	_, err := rs.pool.Exec(ctx, `
		INSERT INTO resources (
			sl_no, description, service_tag, identification_number,
			procurement_date, cost, location, section_location,
			product_category, department, parent_department, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		rec.SlNo, rec.Description, rec.ServiceTag, rec.IdentificationNumber,
		rec.ProcurementDate, rec.Cost, rec.Location, rec.SectionLocation,
		rec.ProductCategory, rec.Department, meta.ParentDepartment, meta.UploadedBy,
		meta.Now)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// sessionStore satisfies auth.SessionChecker against the sessions table.
type sessionStore struct {
	s *Server
}

func (ss sessionStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := ss.s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1 AND expires_at > now())`,
		sessionID).Scan(&exists)
	return exists, err
}
