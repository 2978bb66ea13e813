package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lunafm/station-api/internal/model"
)

type ShowRepo struct{ DB *sql.DB }

func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{DB: db} }

const showCols = `id, title, slug, description,
	artist_name, artist_bio, artist_email, artist_photo,
	social_instagram, social_facebook, social_website, social_soundcloud, social_mixcloud,
	image_url, image_alt, genres, tags,
	schedule_day, schedule_slot, schedule_frequency,
	request_status, admin_notes, status, featured, total_episodes,
	created_by, created_at, updated_at`

// rowScanner lets scanShow work for both QueryRow and Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanShow(rs rowScanner) (*model.Show, error) {
	var s model.Show
	var genres, tags string
	err := rs.Scan(&s.ID, &s.Title, &s.Slug, &s.Description,
		&s.Artist.Name, &s.Artist.Bio, &s.Artist.Email, &s.Artist.Photo,
		&s.Artist.SocialLinks.Instagram, &s.Artist.SocialLinks.Facebook,
		&s.Artist.SocialLinks.Website, &s.Artist.SocialLinks.Soundcloud,
		&s.Artist.SocialLinks.Mixcloud,
		&s.Image.URL, &s.Image.Alt, &genres, &tags,
		&s.Schedule.DayOfWeek, &s.Schedule.TimeSlot, &s.Schedule.Frequency,
		&s.RequestStatus, &s.AdminNotes, &s.Status, &s.Featured, &s.Stats.TotalEpisodes,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Genres = unpackList(genres)
	s.Tags = unpackList(tags)
	return &s, nil
}

// Create inserts a show and fills in its ID. Title and slug carry unique
// indexes; a duplicate on either surfaces as ErrTitleExists.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO shows (title, slug, description,
			artist_name, artist_bio, artist_email, artist_photo,
			social_instagram, social_facebook, social_website, social_soundcloud, social_mixcloud,
			image_url, image_alt, genres, tags,
			schedule_day, schedule_slot, schedule_frequency,
			request_status, admin_notes, status, featured, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.Title, s.Slug, s.Description,
		s.Artist.Name, s.Artist.Bio, s.Artist.Email, s.Artist.Photo,
		s.Artist.SocialLinks.Instagram, s.Artist.SocialLinks.Facebook,
		s.Artist.SocialLinks.Website, s.Artist.SocialLinks.Soundcloud,
		s.Artist.SocialLinks.Mixcloud,
		s.Image.URL, s.Image.Alt, packList(s.Genres), packList(s.Tags),
		s.Schedule.DayOfWeek, s.Schedule.TimeSlot, s.Schedule.Frequency,
		s.RequestStatus, s.AdminNotes, s.Status, s.Featured, s.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrTitleExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a single show.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	return scanShow(r.DB.QueryRowContext(ctx,
		"SELECT "+showCols+" FROM shows WHERE id = ? LIMIT 1", id))
}

// GetBySlug fetches a show by its URL slug (public endpoint).
func (r *ShowRepo) GetBySlug(ctx context.Context, slug string) (*model.Show, error) {
	return scanShow(r.DB.QueryRowContext(ctx,
		"SELECT "+showCols+" FROM shows WHERE slug = ? LIMIT 1", slug))
}

// ShowFilter narrows List results. Zero values mean no filtering.
type ShowFilter struct {
	Status   string
	Featured *bool
	Genre    string
}

// List returns shows matching the filter, most recently updated first.
func (r *ShowRepo) List(ctx context.Context, f ShowFilter) ([]*model.Show, error) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Featured != nil {
		conds = append(conds, "featured = ?")
		args = append(args, *f.Featured)
	}
	if f.Genre != "" {
		conds = append(conds, "JSON_CONTAINS(genres, JSON_QUOTE(?))")
		args = append(args, f.Genre)
	}
	q := "SELECT " + showCols + " FROM shows"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY updated_at DESC"
	return r.queryShows(ctx, q, args...)
}

// ListByCreator returns the shows submitted by one artist.
func (r *ShowRepo) ListByCreator(ctx context.Context, userID uint64) ([]*model.Show, error) {
	return r.queryShows(ctx,
		"SELECT "+showCols+" FROM shows WHERE created_by = ? ORDER BY updated_at DESC", userID)
}

// ListPending returns the moderation queue, oldest submissions last.
func (r *ShowRepo) ListPending(ctx context.Context) ([]*model.Show, error) {
	return r.queryShows(ctx,
		"SELECT "+showCols+" FROM shows WHERE request_status = ? ORDER BY created_at DESC",
		model.RequestPending)
}

// Update overwrites every mutable field of a show (admin full-field edit).
func (r *ShowRepo) Update(ctx context.Context, s *model.Show) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE shows SET title=?, slug=?, description=?,
			artist_name=?, artist_bio=?, artist_email=?, artist_photo=?,
			social_instagram=?, social_facebook=?, social_website=?, social_soundcloud=?, social_mixcloud=?,
			image_url=?, image_alt=?, genres=?, tags=?,
			schedule_day=?, schedule_slot=?, schedule_frequency=?,
			status=?, featured=?
		 WHERE id=?`,
		s.Title, s.Slug, s.Description,
		s.Artist.Name, s.Artist.Bio, s.Artist.Email, s.Artist.Photo,
		s.Artist.SocialLinks.Instagram, s.Artist.SocialLinks.Facebook,
		s.Artist.SocialLinks.Website, s.Artist.SocialLinks.Soundcloud,
		s.Artist.SocialLinks.Mixcloud,
		s.Image.URL, s.Image.Alt, packList(s.Genres), packList(s.Tags),
		s.Schedule.DayOfWeek, s.Schedule.TimeSlot, s.Schedule.Frequency,
		s.Status, s.Featured, s.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrTitleExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The row may exist with identical values; distinguish via lookup.
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Approve moves a pending request to approved and activates the show.
// Calling it on an already approved show only overwrites the notes.
func (r *ShowRepo) Approve(ctx context.Context, id uint64, notes *string) (*model.Show, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE shows SET request_status=?, status=?, admin_notes=? WHERE id=?",
		model.RequestApproved, model.ShowActive, notes, id)
	if err != nil {
		return nil, err
	}
	_ = res // affected rows can be 0 on idempotent re-approval
	return r.GetByID(ctx, id)
}

// Reject marks a request as rejected, leaving the operational status
// untouched. Callers must supply non-empty notes; that rule lives in the
// handler so the validation error carries a user-facing message.
func (r *ShowRepo) Reject(ctx context.Context, id uint64, notes string) (*model.Show, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE shows SET request_status=?, admin_notes=? WHERE id=?",
		model.RequestRejected, notes, id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a show and its episodes in one transaction. Episode audio
// files on disk are the caller's responsibility; collect their paths before
// calling this.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM episodes WHERE show_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM shows WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *ShowRepo) queryShows(ctx context.Context, q string, args ...any) ([]*model.Show, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Show{}
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
