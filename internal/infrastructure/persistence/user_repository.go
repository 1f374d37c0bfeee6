package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/persistence/common"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

const userColumns = `id, username, COALESCE(email, '') AS email, password_hash, points, experience, level, badges,
	is_admin, is_worker, avatar, city, language, referral_code, referred_by, referral_points,
	total_reports, total_completed, total_points_added, total_likes_given, total_comments, total_photos,
	created_at, updated_at`

type userRow struct {
	ID               uuid.UUID  `db:"id"`
	Username         string     `db:"username"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	Points           int64      `db:"points"`
	Experience       int64      `db:"experience"`
	Level            int        `db:"level"`
	Badges           []byte     `db:"badges"`
	IsAdmin          bool       `db:"is_admin"`
	IsWorker         bool       `db:"is_worker"`
	Avatar           *string    `db:"avatar"`
	City             string     `db:"city"`
	Language         string     `db:"language"`
	ReferralCode     string     `db:"referral_code"`
	ReferredBy       *uuid.UUID `db:"referred_by"`
	ReferralPoints   int64      `db:"referral_points"`
	TotalReports     int        `db:"total_reports"`
	TotalCompleted   int        `db:"total_completed"`
	TotalPointsAdded int        `db:"total_points_added"`
	TotalLikesGiven  int        `db:"total_likes_given"`
	TotalComments    int        `db:"total_comments"`
	TotalPhotos      int        `db:"total_photos"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (r *userRow) toEntity() (*entity.User, error) {
	badges := entity.Badges{}
	if len(r.Badges) > 0 {
		if err := json.Unmarshal(r.Badges, &badges); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "повреждён список бейджей")
		}
	}
	return &entity.User{
		ID:               r.ID,
		Username:         r.Username,
		Email:            r.Email,
		PasswordHash:     r.PasswordHash,
		Points:           r.Points,
		Experience:       r.Experience,
		Level:            r.Level,
		Badges:           badges,
		IsAdmin:          r.IsAdmin,
		IsWorker:         r.IsWorker,
		Avatar:           r.Avatar,
		City:             r.City,
		Language:         r.Language,
		ReferralCode:     r.ReferralCode,
		ReferredBy:       r.ReferredBy,
		ReferralPoints:   r.ReferralPoints,
		TotalReports:     r.TotalReports,
		TotalCompleted:   r.TotalCompleted,
		TotalPointsAdded: r.TotalPointsAdded,
		TotalLikesGiven:  r.TotalLikesGiven,
		TotalComments:    r.TotalComments,
		TotalPhotos:      r.TotalPhotos,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

func marshalBadges(b entity.Badges) ([]byte, error) {
	if b == nil {
		b = entity.Badges{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать бейджи")
	}
	return data, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	badges, err := marshalBadges(user.Badges)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO users (id, username, email, password_hash, points, experience, level, badges,
			is_admin, is_worker, avatar, city, language, referral_code, referred_by, referral_points,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.s.ext.ExecContext(ctx, query,
		user.ID,
		user.Username,
		nullableString(user.Email),
		user.PasswordHash,
		user.Points,
		user.Experience,
		user.Level,
		badges,
		user.IsAdmin,
		user.IsWorker,
		user.Avatar,
		user.City,
		user.Language,
		user.ReferralCode,
		user.ReferredBy,
		user.ReferralPoints,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return common.MapError(err, "не удалось создать пользователя")
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	badges, err := marshalBadges(user.Badges)
	if err != nil {
		return err
	}
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, points = $5, experience = $6, level = $7,
		    badges = $8, is_admin = $9, is_worker = $10, avatar = $11, city = $12, language = $13,
		    referred_by = $14, referral_points = $15, total_reports = $16, total_completed = $17,
		    total_points_added = $18, total_likes_given = $19, total_comments = $20, total_photos = $21,
		    updated_at = $22
		WHERE id = $1
	`
	return common.ExecAffected(ctx, r.s.ext, apperror.ErrUserNotFound, "не удалось обновить пользователя", query,
		user.ID,
		user.Username,
		nullableString(user.Email),
		user.PasswordHash,
		user.Points,
		user.Experience,
		user.Level,
		badges,
		user.IsAdmin,
		user.IsWorker,
		user.Avatar,
		user.City,
		user.Language,
		user.ReferredBy,
		user.ReferralPoints,
		user.TotalReports,
		user.TotalCompleted,
		user.TotalPointsAdded,
		user.TotalLikesGiven,
		user.TotalComments,
		user.TotalPhotos,
		user.UpdatedAt,
	)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any, lock string) (*entity.User, error) {
	row, err := common.GetOne[userRow](ctx, r.s.ext, apperror.ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE `+where+lock, arg)
	if err != nil {
		return nil, err
	}
	return row.toEntity()
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = $1", id, "")
}

func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = $1", id, r.s.forUpdate())
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "LOWER(username) = $1", strings.ToLower(username), "")
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "LOWER(email) = $1", strings.ToLower(email), "")
}

func (r *UserRepository) FindByReferralCode(ctx context.Context, code string) (*entity.User, error) {
	return r.findOne(ctx, "referral_code = $1", code, "")
}

func (r *UserRepository) selectMany(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	var rows []userRow
	if err := sqlxSelect(ctx, r.s, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователей")
	}
	users := make([]*entity.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, int, error) {
	users, err := r.selectMany(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := sqlxGet(ctx, r.s, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать пользователей")
	}
	return users, total, nil
}

func (r *UserRepository) TopByPoints(ctx context.Context, limit int) ([]*entity.User, error) {
	return r.selectMany(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY points DESC, created_at ASC LIMIT $1`, limit)
}

func (r *UserRepository) TopByReports(ctx context.Context, limit int) ([]*entity.User, error) {
	return r.selectMany(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY total_reports DESC, created_at ASC LIMIT $1`, limit)
}

func (r *UserRepository) RankByPoints(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		SELECT 1 + (
			SELECT COUNT(*) FROM users u
			WHERE u.points > me.points OR (u.points = me.points AND u.created_at < me.created_at)
		)
		FROM users me
		WHERE me.id = $1
	`
	rank, err := common.GetOne[int](ctx, r.s.ext, apperror.ErrUserNotFound, query, id)
	if err != nil {
		return 0, err
	}
	return *rank, nil
}
