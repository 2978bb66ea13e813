package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lunafm/station-api/internal/model"
)

type EpisodeRepo struct{ DB *sql.DB }

func NewEpisodeRepo(db *sql.DB) *EpisodeRepo { return &EpisodeRepo{DB: db} }

const episodeCols = `id, show_id, title, episode_number, description,
	image_url, image_alt, air_date, genres, mixcloud_url, status, featured,
	plays, likes,
	local_filename, local_path, local_original_name, local_size, local_mime_type,
	local_uploaded_at, local_exists, local_deleted_at,
	airtime_file_id, airtime_uploaded, airtime_uploaded_at, airtime_uploaded_by,
	airtime_schedule_id, airtime_scheduled_at, airtime_last_error, airtime_upload_failed,
	created_by, created_at, updated_at`

func scanEpisode(rs rowScanner) (*model.Episode, error) {
	var e model.Episode
	var genres string
	var lfName, lfPath, lfOrig, lfMime sql.NullString
	var lfSize sql.NullInt64
	err := rs.Scan(&e.ID, &e.ShowID, &e.Title, &e.EpisodeNumber, &e.Description,
		&e.Image.URL, &e.Image.Alt, &e.AirDate, &genres, &e.MixcloudURL, &e.Status, &e.Featured,
		&e.Stats.Plays, &e.Stats.Likes,
		&lfName, &lfPath, &lfOrig, &lfSize, &lfMime,
		&e.LocalFile.UploadedAt, &e.LocalFile.Exists, &e.LocalFile.DeletedAt,
		&e.Airtime.FileID, &e.Airtime.Uploaded, &e.Airtime.UploadedAt, &e.Airtime.UploadedBy,
		&e.Airtime.ScheduleID, &e.Airtime.ScheduledAt, &e.Airtime.LastError, &e.Airtime.UploadFailed,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Genres = unpackList(genres)
	e.LocalFile.Filename = lfName.String
	e.LocalFile.Path = lfPath.String
	e.LocalFile.OriginalName = lfOrig.String
	e.LocalFile.Size = lfSize.Int64
	e.LocalFile.MimeType = lfMime.String
	return &e, nil
}

// Create inserts an episode and bumps the parent show's episode counter in
// the same transaction, so the cached total never drifts from the rows.
func (r *EpisodeRepo) Create(ctx context.Context, e *model.Episode) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO episodes (show_id, title, episode_number, description,
			image_url, image_alt, air_date, genres, mixcloud_url, status, featured, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ShowID, e.Title, e.EpisodeNumber, e.Description,
		e.Image.URL, e.Image.Alt, e.AirDate, packList(e.Genres),
		e.MixcloudURL, e.Status, e.Featured, e.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)

	if _, err := tx.ExecContext(ctx,
		"UPDATE shows SET total_episodes = total_episodes + 1 WHERE id = ?", e.ShowID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID fetches a single episode.
func (r *EpisodeRepo) GetByID(ctx context.Context, id uint64) (*model.Episode, error) {
	return scanEpisode(r.DB.QueryRowContext(ctx,
		"SELECT "+episodeCols+" FROM episodes WHERE id = ? LIMIT 1", id))
}

// EpisodeFilter narrows List results. OwnedBy restricts episodes to shows
// created by that user, which is how artist visibility is enforced.
type EpisodeFilter struct {
	ShowID  uint64
	Status  string
	OwnedBy uint64
}

// List returns episodes matching the filter, newest air date first.
func (r *EpisodeRepo) List(ctx context.Context, f EpisodeFilter) ([]*model.Episode, error) {
	var conds []string
	var args []any
	if f.ShowID != 0 {
		conds = append(conds, "show_id = ?")
		args = append(args, f.ShowID)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.OwnedBy != 0 {
		conds = append(conds, "show_id IN (SELECT id FROM shows WHERE created_by = ?)")
		args = append(args, f.OwnedBy)
	}
	q := "SELECT " + episodeCols + " FROM episodes"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY air_date DESC"
	return r.queryEpisodes(ctx, q, args...)
}

// ListPublishedByShow returns the public episode feed for a show.
func (r *EpisodeRepo) ListPublishedByShow(ctx context.Context, showID uint64) ([]*model.Episode, error) {
	return r.queryEpisodes(ctx,
		"SELECT "+episodeCols+" FROM episodes WHERE show_id = ? AND status = ? ORDER BY air_date DESC",
		showID, model.EpisodePublished)
}

// ListWithLocalFiles returns episodes that still hold an audio file on
// disk, most recently uploaded first. Used by the streaming dashboard.
func (r *EpisodeRepo) ListWithLocalFiles(ctx context.Context) ([]*model.Episode, error) {
	return r.queryEpisodes(ctx,
		"SELECT "+episodeCols+" FROM episodes WHERE local_exists = 1 ORDER BY local_uploaded_at DESC")
}

// Update overwrites the editorial fields of an episode. File and airtime
// bookkeeping have their own dedicated methods below.
func (r *EpisodeRepo) Update(ctx context.Context, e *model.Episode) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE episodes SET title=?, episode_number=?, description=?,
			image_url=?, image_alt=?, air_date=?, genres=?, mixcloud_url=?, status=?, featured=?
		 WHERE id=?`,
		e.Title, e.EpisodeNumber, e.Description,
		e.Image.URL, e.Image.Alt, e.AirDate, packList(e.Genres),
		e.MixcloudURL, e.Status, e.Featured, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an episode and decrements the parent counter in the same
// transaction. It returns the deleted row so the caller can remove any
// local audio file from disk afterwards.
func (r *EpisodeRepo) Delete(ctx context.Context, id uint64) (*model.Episode, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM episodes WHERE id = ?", id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE shows SET total_episodes = total_episodes - 1 WHERE id = ? AND total_episodes > 0",
		e.ShowID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetLocalFile records a fresh audio upload. Any previous Airtime linkage
// is wiped because it referred to the replaced file, and the episode drops
// back to draft.
func (r *EpisodeRepo) SetLocalFile(ctx context.Context, id uint64, lf model.LocalFile) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE episodes SET
			local_filename=?, local_path=?, local_original_name=?, local_size=?, local_mime_type=?,
			local_uploaded_at=?, local_exists=1, local_deleted_at=NULL,
			airtime_file_id=NULL, airtime_uploaded=0, airtime_uploaded_at=NULL, airtime_uploaded_by=NULL,
			airtime_schedule_id=NULL, airtime_scheduled_at=NULL, airtime_last_error=NULL, airtime_upload_failed=0,
			status=?
		 WHERE id=?`,
		lf.Filename, lf.Path, lf.OriginalName, lf.Size, lf.MimeType,
		lf.UploadedAt, model.EpisodeDraft, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteLocalFile flags the episode's audio as gone while keeping the
// historical metadata. Calling it twice is harmless.
func (r *EpisodeRepo) SoftDeleteLocalFile(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE episodes SET local_exists=0, local_deleted_at=? WHERE id=?", at, id)
	return err
}

// MarkUploaded annotates the episode as manually uploaded to Airtime.
func (r *EpisodeRepo) MarkUploaded(ctx context.Context, id uint64, fileID string, by uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE episodes SET airtime_file_id=?, airtime_uploaded=1, airtime_uploaded_at=?, airtime_uploaded_by=?,
			airtime_schedule_id=NULL, airtime_scheduled_at=NULL, airtime_last_error=NULL, airtime_upload_failed=0
		 WHERE id=?`,
		fileID, time.Now().UTC(), by, id)
	return err
}

// SetSchedule records the manual Airtime schedule annotation.
func (r *EpisodeRepo) SetSchedule(ctx context.Context, id uint64, scheduleID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE episodes SET airtime_schedule_id=?, airtime_scheduled_at=? WHERE id=?",
		scheduleID, time.Now().UTC(), id)
	return err
}

// ClearSchedule removes the local schedule annotation.
func (r *EpisodeRepo) ClearSchedule(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE episodes SET airtime_schedule_id=NULL, airtime_scheduled_at=NULL WHERE id=?", id)
	return err
}

func (r *EpisodeRepo) queryEpisodes(ctx context.Context, q string, args ...any) ([]*model.Episode, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Episode{}
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
