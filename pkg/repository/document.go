package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/mailscope/pkg/db"
	"github.com/umputun/mailscope/pkg/domain"
)

// DocumentRepository handles parent and story rows of the documents table
type DocumentRepository struct {
	store *db.DB
	retry retrier
}

// Stats holds row counters of the documents table
type Stats struct {
	Total      int `db:"total" json:"total"`
	Parents    int `db:"parents" json:"parents"`
	Stories    int `db:"stories" json:"stories"`
	Unenriched int `db:"unenriched" json:"unenriched"`
	Split      int `db:"split" json:"split"`
	Errors     int `db:"errors" json:"errors"`
}

// NewDocumentRepository creates a new document repository. Writes failing on a busy database
// are tried up to retryAttempts times with retryDelay between attempts.
func NewDocumentRepository(store *db.DB, retryAttempts int, retryDelay time.Duration) *DocumentRepository {
	return &DocumentRepository{store: store, retry: retrier{attempts: retryAttempts, delay: retryDelay}}
}

// CreateIfMissing inserts a parent row for the item unless a row with the same id exists.
// Existing rows are never overwritten, the returned flag reports whether a row was created.
func (r *DocumentRepository) CreateIfMissing(ctx context.Context, item domain.InboundItem, tag string) (bool, error) {
	if item.ID == "" {
		return false, fmt.Errorf("create document: empty id")
	}
	created := item.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	row := db.Document{
		ID:          item.ID,
		SourceType:  string(item.SourceType),
		SenderRaw:   item.SenderRaw,
		SenderTag:   tag,
		Title:       item.Title,
		ContentText: item.ContentText,
		ContentHTML: item.ContentHTML,
		Actors:      db.StringList{},
		Themes:      db.StringList{},
		CreatedAt:   created.UTC(),
	}
	if row.SourceType == "" {
		row.SourceType = string(domain.SourceEmail)
	}

	var inserted bool
	err := r.retry.do(ctx, func() error {
		res, err := r.store.DB().NamedExecContext(ctx, `
			INSERT INTO documents (id, source_type, sender_raw, sender_tag, title, content_text, content_html,
				actors, themes, created_at)
			VALUES (:id, :source_type, :sender_raw, :sender_tag, :title, :content_text, :content_html,
				:actors, :themes, :created_at)
			ON CONFLICT(id) DO NOTHING`, row)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create document %s: %w", item.ID, err)
	}
	return inserted, nil
}

// Lookup returns the document with the given id
func (r *DocumentRepository) Lookup(ctx context.Context, id string) (*domain.Document, error) {
	var row db.Document
	err := r.store.DB().GetContext(ctx, &row, `SELECT * FROM documents WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return toDomainDocument(row), nil
}

// UpdateEnrichment stores the enrichment result on an existing row in place.
// It never creates a row, a missing id gives ErrNotFound.
func (r *DocumentRepository) UpdateEnrichment(ctx context.Context, id string, res domain.EnrichmentResult) error {
	err := r.retry.do(ctx, func() error {
		result, err := r.store.DB().ExecContext(ctx, `
			UPDATE documents
			SET summary = ?, handler = ?, actors = ?, themes = ?, category = ?, relevance_score = ?, enriched_at = ?
			WHERE id = ?`,
			res.Summary, res.Handler, db.StringList(res.Actors), db.StringList(res.Themes), res.Category,
			res.RelevanceScore, time.Now().UTC(), id)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update enrichment of %s: %w", id, err)
	}
	return nil
}

// ReplaceStories writes story rows of a split parent in one transaction: the parent summary
// is set to parentSummary, story rows are upserted by id and story rows of the same parent not
// present in stories are removed. Returns the number of story rows inserted or changed.
func (r *DocumentRepository) ReplaceStories(ctx context.Context, parentID, parentSummary, handler string,
	stories []domain.Document) (int, error) {
	var changed int
	err := r.retry.do(ctx, func() error {
		changed = 0
		return r.store.InTransaction(ctx, func(tx *sqlx.Tx) error {
			now := time.Now().UTC()
			res, err := tx.ExecContext(ctx,
				`UPDATE documents SET summary = ?, handler = ?, enriched_at = ? WHERE id = ? AND parent_id = ''`,
				parentSummary, handler, now, parentID)
			if err != nil {
				return fmt.Errorf("update parent: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("update parent: %w", err)
			}
			if n == 0 {
				return ErrNotFound
			}
			var parentCreated time.Time
			if err = tx.GetContext(ctx, &parentCreated, `SELECT created_at FROM documents WHERE id = ?`, parentID); err != nil {
				return fmt.Errorf("get parent: %w", err)
			}

			ids := make([]string, 0, len(stories))
			for _, s := range stories {
				ids = append(ids, s.ID)
			}
			query, args, err := sq.Delete("documents").
				Where(sq.Eq{"parent_id": parentID}).
				Where(sq.NotEq{"id": ids}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build stale stories query: %w", err)
			}
			if _, err = tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("delete stale stories: %w", err)
			}

			for _, s := range stories {
				if s.CreatedAt.IsZero() {
					s.CreatedAt = parentCreated // stories sort next to their parent
				}
				row := fromDomainDocument(s)
				row.ParentID = parentID
				row.EnrichedAt = sql.NullTime{Time: now, Valid: true}
				res, err := tx.NamedExecContext(ctx, upsertStorySQL, row)
				if err != nil {
					return fmt.Errorf("upsert story %s: %w", s.ID, err)
				}
				n, err := res.RowsAffected()
				if err != nil {
					return fmt.Errorf("upsert story %s: %w", s.ID, err)
				}
				changed += int(n)
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("replace stories of %s: %w", parentID, err)
	}
	return changed, nil
}

// upsertStorySQL overwrites a story row only when one of its fields differs
const upsertStorySQL = `
	INSERT INTO documents (id, parent_id, source_type, sender_raw, sender_tag, title, content_text, content_html,
		summary, handler, actors, themes, category, relevance_score, link, match_confidence, ordinal,
		created_at, enriched_at)
	VALUES (:id, :parent_id, :source_type, :sender_raw, :sender_tag, :title, :content_text, :content_html,
		:summary, :handler, :actors, :themes, :category, :relevance_score, :link, :match_confidence, :ordinal,
		:created_at, :enriched_at)
	ON CONFLICT(id) DO UPDATE SET
		parent_id = excluded.parent_id,
		source_type = excluded.source_type,
		sender_raw = excluded.sender_raw,
		sender_tag = excluded.sender_tag,
		title = excluded.title,
		content_text = excluded.content_text,
		content_html = excluded.content_html,
		summary = excluded.summary,
		handler = excluded.handler,
		actors = excluded.actors,
		themes = excluded.themes,
		category = excluded.category,
		relevance_score = excluded.relevance_score,
		link = excluded.link,
		match_confidence = excluded.match_confidence,
		ordinal = excluded.ordinal,
		enriched_at = excluded.enriched_at
	WHERE documents.title IS NOT excluded.title
		OR documents.summary IS NOT excluded.summary
		OR documents.content_text IS NOT excluded.content_text
		OR documents.sender_tag IS NOT excluded.sender_tag
		OR documents.actors IS NOT excluded.actors
		OR documents.themes IS NOT excluded.themes
		OR documents.category IS NOT excluded.category
		OR documents.relevance_score IS NOT excluded.relevance_score
		OR documents.link IS NOT excluded.link
		OR documents.match_confidence IS NOT excluded.match_confidence
		OR documents.ordinal IS NOT excluded.ordinal
		OR documents.parent_id IS NOT excluded.parent_id`

// Scan returns documents matching the filter, newest first. Stories of a single parent
// (filter.ParentID) are returned in ordinal order.
func (r *DocumentRepository) Scan(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	qb := sq.Select("*").From("documents")

	if filter.Unenriched {
		cond := sq.Or{sq.Eq{"summary": ""}}
		if filter.IncludeSplit {
			cond = append(cond, sq.Like{"summary": domain.SplitSentinel + "%"})
		}
		qb = qb.Where(cond)
	}
	if filter.ParentsOnly {
		qb = qb.Where(sq.Eq{"parent_id": ""})
	}
	if filter.ParentID != "" {
		qb = qb.Where(sq.Eq{"parent_id": filter.ParentID})
	}
	if filter.SenderTag != "" {
		qb = qb.Where(sq.Eq{"sender_tag": filter.SenderTag})
	}
	if filter.MinScore > 0 {
		qb = qb.Where(sq.GtOrEq{"relevance_score": filter.MinScore})
	}

	if filter.ParentID != "" {
		qb = qb.OrderBy("ordinal", "id")
	} else {
		qb = qb.OrderBy("created_at DESC", "id")
	}
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scan query: %w", err)
	}

	var rows []db.Document
	if err := r.store.DB().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	res := make([]domain.Document, 0, len(rows))
	for _, row := range rows {
		res = append(res, *toDomainDocument(row))
	}
	return res, nil
}

// Stats returns row counters
func (r *DocumentRepository) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := r.store.DB().GetContext(ctx, &st, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN parent_id = '' THEN 1 ELSE 0 END), 0) AS parents,
			COALESCE(SUM(CASE WHEN parent_id != '' THEN 1 ELSE 0 END), 0) AS stories,
			COALESCE(SUM(CASE WHEN summary = '' THEN 1 ELSE 0 END), 0) AS unenriched,
			COALESCE(SUM(CASE WHEN summary LIKE ? THEN 1 ELSE 0 END), 0) AS split,
			COALESCE(SUM(CASE WHEN summary LIKE ? THEN 1 ELSE 0 END), 0) AS errors
		FROM documents`,
		domain.SplitSentinel+"%", domain.Provenance("Error")+"%")
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return st, nil
}

// toDomainDocument converts db.Document to domain.Document
func toDomainDocument(row db.Document) *domain.Document {
	doc := &domain.Document{
		ID:              row.ID,
		ParentID:        row.ParentID,
		SourceType:      domain.SourceType(row.SourceType),
		SenderRaw:       row.SenderRaw,
		SenderTag:       row.SenderTag,
		Title:           row.Title,
		ContentText:     row.ContentText,
		ContentHTML:     row.ContentHTML,
		Summary:         row.Summary,
		Handler:         row.Handler,
		Actors:          []string(row.Actors),
		Themes:          []string(row.Themes),
		Category:        row.Category,
		RelevanceScore:  row.RelevanceScore,
		Link:            row.Link,
		MatchConfidence: row.MatchConfidence,
		Ordinal:         row.Ordinal,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if doc.Actors == nil {
		doc.Actors = []string{}
	}
	if doc.Themes == nil {
		doc.Themes = []string{}
	}
	if row.EnrichedAt.Valid {
		t := row.EnrichedAt.Time
		doc.EnrichedAt = &t
	}
	return doc
}

// fromDomainDocument converts domain.Document to db.Document
func fromDomainDocument(doc domain.Document) db.Document {
	row := db.Document{
		ID:              doc.ID,
		ParentID:        doc.ParentID,
		SourceType:      string(doc.SourceType),
		SenderRaw:       doc.SenderRaw,
		SenderTag:       doc.SenderTag,
		Title:           doc.Title,
		ContentText:     doc.ContentText,
		ContentHTML:     doc.ContentHTML,
		Summary:         doc.Summary,
		Handler:         doc.Handler,
		Actors:          db.StringList(doc.Actors),
		Themes:          db.StringList(doc.Themes),
		Category:        doc.Category,
		RelevanceScore:  doc.RelevanceScore,
		Link:            doc.Link,
		MatchConfidence: doc.MatchConfidence,
		Ordinal:         doc.Ordinal,
		CreatedAt:       doc.CreatedAt.UTC(),
	}
	if row.SourceType == "" {
		row.SourceType = string(domain.SourceEmail)
	}
	if doc.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if doc.EnrichedAt != nil {
		row.EnrichedAt = sql.NullTime{Time: doc.EnrichedAt.UTC(), Valid: true}
	}
	return row
}
