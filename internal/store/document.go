package store

import (
	"context"
	"time"

	"compliancehq/internal/utils"
	"compliancehq/pkg/types"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentTableName = "compliancehq.certificate_documents"

var documentColumns = utils.StructTagValues(types.CertificateDocument{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// DocumentByID retrieves a single certificate document scoped by tenant.
func (r *DocumentRepository) DocumentByID(ctx context.Context, tenantID, id string) (*types.CertificateDocument, error) {
	query, args, _ := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	var doc = new(types.CertificateDocument)
	err := pgxscan.Get(ctx, r.pool, doc, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}
	if err != nil {
		return nil, types.ErrDocumentNotFound
	}
	return doc, nil
}

// DocumentsBySubcontractor lists all certificates for one subcontractor,
// newest first.
func (r *DocumentRepository) DocumentsBySubcontractor(ctx context.Context, tenantID, subcontractorID string) ([]types.CertificateDocument, error) {
	query, args, _ := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(squirrel.Eq{"subcontractor_id": subcontractorID, "tenant_id": tenantID}).
		OrderBy("uploaded_at DESC").
		ToSql()

	var docs []types.CertificateDocument
	err := pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateDocument inserts a new certificate document record.
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *types.CertificateDocument) error {

	doc.ID = utils.NanoID()
	doc.UploadedAt = time.Now()

	query, args, _ := psql().
		Insert(documentTableName).
		SetMap(utils.StructToMap(doc)).
		ToSql()

	_, err := r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create certificate document")
}

// DeleteDocument removes one certificate document record.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, tenantID, id string) error {
	query, args, _ := psql().
		Delete(documentTableName).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

// DeleteDocumentsBySubcontractor removes all certificate rows for a
// subcontractor. Callers delete the S3 objects first.
func (r *DocumentRepository) DeleteDocumentsBySubcontractor(ctx context.Context, tenantID, subcontractorID string) error {
	query, args, _ := psql().
		Delete(documentTableName).
		Where(squirrel.Eq{"subcontractor_id": subcontractorID, "tenant_id": tenantID}).
		ToSql()

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}
