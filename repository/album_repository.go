package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"CrateFM/model"
)

// AlbumRepository is the authoritative remote record store. The read
// methods back the drift detector's incremental sync; the write methods
// are the ingest write-through.
type AlbumRepository interface {
	// Count returns the authoritative record count.
	Count(ctx context.Context) (int, error)

	// FetchAll returns every record, oldest first.
	FetchAll(ctx context.Context) ([]model.AlbumRecord, error)

	// FetchCreatedAfter returns records created strictly after since,
	// oldest first.
	FetchCreatedAfter(ctx context.Context, since time.Time) ([]model.AlbumRecord, error)

	// FetchNewest returns the n most recently created records, oldest
	// of the n first.
	FetchNewest(ctx context.Context, n int) ([]model.AlbumRecord, error)

	Insert(ctx context.Context, record *model.AlbumRecord) error
	Update(ctx context.Context, record *model.AlbumRecord) error
	Delete(ctx context.Context, id int64) error
}

// MySQLAlbumRepository is the MySQL implementation.
type MySQLAlbumRepository struct {
	db *sql.DB
}

// NewMySQLAlbumRepository creates a MySQL-backed album repository.
func NewMySQLAlbumRepository(db *sql.DB) *MySQLAlbumRepository {
	return &MySQLAlbumRepository{db: db}
}

const albumColumns = `id, title, artist, year, role, type, genres, styles, formats, images,
	tracklist, track_count, credits, cover_image, created_at, updated_at`

// Count returns the authoritative record count.
func (r *MySQLAlbumRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count albums: %w", err)
	}
	return count, nil
}

// FetchAll returns every record, oldest first.
func (r *MySQLAlbumRepository) FetchAll(ctx context.Context) ([]model.AlbumRecord, error) {
	query := `SELECT ` + albumColumns + ` FROM albums ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch all albums: %w", err)
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// FetchCreatedAfter returns records created strictly after since.
func (r *MySQLAlbumRepository) FetchCreatedAfter(ctx context.Context, since time.Time) ([]model.AlbumRecord, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE created_at > ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("fetch albums created after %s: %w", since, err)
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// FetchNewest returns the n most recently created records. The inner
// query selects newest-first, the outer flips them back to insertion
// order so appends keep the working set chronological.
func (r *MySQLAlbumRepository) FetchNewest(ctx context.Context, n int) ([]model.AlbumRecord, error) {
	query := `SELECT ` + albumColumns + ` FROM (
		SELECT ` + albumColumns + ` FROM albums ORDER BY created_at DESC, id DESC LIMIT ?
	) newest ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("fetch %d newest albums: %w", n, err)
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// Insert stores one record.
func (r *MySQLAlbumRepository) Insert(ctx context.Context, record *model.AlbumRecord) error {
	query := `
		INSERT INTO albums (` + albumColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	genres, styles, formats, images, tracklist, credits, err := marshalAlbumJSON(record)
	if err != nil {
		return err
	}

	now := time.Now()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Title,
		record.Artist,
		record.Year,
		record.Role,
		record.Type,
		genres,
		styles,
		formats,
		images,
		tracklist,
		record.TrackCount,
		credits,
		record.CoverImage,
		createdAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert album %d: %w", record.ID, err)
	}
	return nil
}

// Update rewrites one record in place, keyed by identifier.
func (r *MySQLAlbumRepository) Update(ctx context.Context, record *model.AlbumRecord) error {
	query := `
		UPDATE albums
		SET title = ?, artist = ?, year = ?, role = ?, type = ?, genres = ?, styles = ?,
			formats = ?, images = ?, tracklist = ?, track_count = ?, credits = ?,
			cover_image = ?, updated_at = ?
		WHERE id = ?
	`
	genres, styles, formats, images, tracklist, credits, err := marshalAlbumJSON(record)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		record.Title,
		record.Artist,
		record.Year,
		record.Role,
		record.Type,
		genres,
		styles,
		formats,
		images,
		tracklist,
		record.TrackCount,
		credits,
		record.CoverImage,
		time.Now(),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update album %d: %w", record.ID, err)
	}
	return nil
}

// Delete removes one record.
func (r *MySQLAlbumRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete album %d: %w", id, err)
	}
	return nil
}

func scanAlbums(rows *sql.Rows) ([]model.AlbumRecord, error) {
	var albums []model.AlbumRecord
	for rows.Next() {
		var (
			rec        model.AlbumRecord
			role       sql.NullString
			typ        sql.NullString
			genres     sql.NullString
			styles     sql.NullString
			formats    sql.NullString
			images     sql.NullString
			tracklist  sql.NullString
			credits    sql.NullString
			coverImage sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Artist,
			&rec.Year,
			&role,
			&typ,
			&genres,
			&styles,
			&formats,
			&images,
			&tracklist,
			&rec.TrackCount,
			&credits,
			&coverImage,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}

		rec.Role = role.String
		rec.Type = typ.String
		rec.CoverImage = coverImage.String
		unmarshalColumn(genres, &rec.Genres)
		unmarshalColumn(styles, &rec.Styles)
		unmarshalColumn(formats, &rec.Formats)
		unmarshalColumn(images, &rec.Images)
		unmarshalColumn(tracklist, &rec.Tracklist)
		unmarshalColumn(credits, &rec.Credits)

		albums = append(albums, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

// unmarshalColumn decodes a JSON text column, tolerating NULL and
// malformed text (the column stays zero-valued).
func unmarshalColumn(col sql.NullString, out interface{}) {
	if !col.Valid || col.String == "" {
		return
	}
	_ = json.Unmarshal([]byte(col.String), out)
}

func marshalAlbumJSON(record *model.AlbumRecord) (genres, styles, formats, images, tracklist, credits string, err error) {
	marshal := func(v interface{}) (string, error) {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal album %d column: %w", record.ID, err)
		}
		return string(raw), nil
	}

	if genres, err = marshal(record.Genres); err != nil {
		return
	}
	if styles, err = marshal(record.Styles); err != nil {
		return
	}
	if formats, err = marshal(record.Formats); err != nil {
		return
	}
	if images, err = marshal(record.Images); err != nil {
		return
	}
	if tracklist, err = marshal(record.Tracklist); err != nil {
		return
	}
	credits, err = marshal(record.Credits)
	return
}
