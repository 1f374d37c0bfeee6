package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/persistence/common"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

const problemColumns = `id, user_id, title, description, photo, lat, lng, category, severity, status, reward,
	assigned_to, assigned_at, completed_by, likes, dislikes, created_at, updated_at, completed_at`

type problemRow struct {
	ID          uuid.UUID  `db:"id"`
	UserID      uuid.UUID  `db:"user_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Photo       *string    `db:"photo"`
	Lat         float64    `db:"lat"`
	Lng         float64    `db:"lng"`
	Category    string     `db:"category"`
	Severity    int        `db:"severity"`
	Status      string     `db:"status"`
	Reward      int64      `db:"reward"`
	AssignedTo  *uuid.UUID `db:"assigned_to"`
	AssignedAt  *time.Time `db:"assigned_at"`
	CompletedBy *uuid.UUID `db:"completed_by"`
	Likes       int        `db:"likes"`
	Dislikes    int        `db:"dislikes"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (r *problemRow) toEntity() *entity.Problem {
	return &entity.Problem{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Photo:       r.Photo,
		Lat:         r.Lat,
		Lng:         r.Lng,
		Category:    valueobject.ProblemCategory(r.Category),
		Severity:    valueobject.Severity(r.Severity),
		Status:      valueobject.ProblemStatus(r.Status),
		Reward:      r.Reward,
		AssignedTo:  r.AssignedTo,
		AssignedAt:  r.AssignedAt,
		CompletedBy: r.CompletedBy,
		Likes:       r.Likes,
		Dislikes:    r.Dislikes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: r.CompletedAt,
	}
}

type ProblemRepository struct {
	s *Store
}

func (r *ProblemRepository) Create(ctx context.Context, p *entity.Problem) error {
	query := `
		INSERT INTO problems (id, user_id, title, description, photo, lat, lng, category, severity, status,
			reward, assigned_to, assigned_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.s.ext.ExecContext(ctx, query,
		p.ID, p.UserID, p.Title, p.Description, p.Photo, p.Lat, p.Lng,
		string(p.Category), int(p.Severity), string(p.Status), p.Reward,
		p.AssignedTo, p.AssignedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return common.MapError(err, "не удалось создать проблему")
	}
	return nil
}

func (r *ProblemRepository) Update(ctx context.Context, p *entity.Problem) error {
	query := `
		UPDATE problems
		SET title = $2, description = $3, photo = $4, category = $5, severity = $6, status = $7, reward = $8,
		    assigned_to = $9, assigned_at = $10, completed_by = $11, likes = $12, dislikes = $13,
		    updated_at = $14, completed_at = $15
		WHERE id = $1
	`
	return common.ExecAffected(ctx, r.s.ext, apperror.ErrProblemNotFound, "не удалось обновить проблему", query,
		p.ID, p.Title, p.Description, p.Photo, string(p.Category), int(p.Severity), string(p.Status), p.Reward,
		p.AssignedTo, p.AssignedAt, p.CompletedBy, p.Likes, p.Dislikes, p.UpdatedAt, p.CompletedAt,
	)
}

// Delete полагается на ON DELETE CASCADE у голосов, комментариев, отчётов и жалоб.
func (r *ProblemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return common.ExecAffected(ctx, r.s.ext, apperror.ErrProblemNotFound, "не удалось удалить проблему",
		`DELETE FROM problems WHERE id = $1`, id)
}

func (r *ProblemRepository) find(ctx context.Context, id uuid.UUID, lock string) (*entity.Problem, error) {
	row, err := common.GetOne[problemRow](ctx, r.s.ext, apperror.ErrProblemNotFound,
		`SELECT `+problemColumns+` FROM problems WHERE id = $1`+lock, id)
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *ProblemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Problem, error) {
	return r.find(ctx, id, "")
}

func (r *ProblemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Problem, error) {
	return r.find(ctx, id, r.s.forUpdate())
}

func (r *ProblemRepository) TryClaim(ctx context.Context, id, userID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE problems
		SET assigned_to = $2, assigned_at = $3, status = 'in_progress', updated_at = $3
		WHERE id = $1 AND status = 'reported' AND assigned_to IS NULL
	`
	res, err := r.s.ext.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return false, common.MapError(err, "не удалось взять задание")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат запроса")
	}
	return rows == 1, nil
}

func (r *ProblemRepository) List(ctx context.Context, filter repository.ProblemFilter) ([]*entity.Problem, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		conds = append(conds, "status = ANY("+arg(pq.Array(statuses))+")")
	}
	if filter.Category != nil {
		conds = append(conds, "category = "+arg(string(*filter.Category)))
	}
	if filter.AssignedTo != nil {
		conds = append(conds, "assigned_to = "+arg(*filter.AssignedTo))
	}
	if filter.Unassigned {
		conds = append(conds, "assigned_to IS NULL")
	}

	query := `SELECT ` + problemColumns + ` FROM problems`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	var rows []problemRow
	if err := sqlxSelect(ctx, r.s, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список проблем")
	}
	problems := make([]*entity.Problem, len(rows))
	for i := range rows {
		problems[i] = rows[i].toEntity()
	}
	return problems, nil
}

type problemStatsRow struct {
	Total     int `db:"total"`
	Active    int `db:"active"`
	Completed int `db:"completed"`
	Rejected  int `db:"rejected"`
	Critical  int `db:"critical"`
	High      int `db:"high"`
	Medium    int `db:"medium"`
	Low       int `db:"low"`
}

type categoryCountRow struct {
	Category string `db:"category"`
	Count    int    `db:"count"`
}

func (r *ProblemRepository) Stats(ctx context.Context) (*repository.ProblemStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status IN ('reported', 'in_progress')) AS active,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COALESCE(SUM(CASE WHEN severity >= 5 THEN 1 ELSE 0 END), 0) AS critical,
			COALESCE(SUM(CASE WHEN severity = 4 THEN 1 ELSE 0 END), 0) AS high,
			COALESCE(SUM(CASE WHEN severity = 3 THEN 1 ELSE 0 END), 0) AS medium,
			COALESCE(SUM(CASE WHEN severity <= 2 THEN 1 ELSE 0 END), 0) AS low
		FROM problems
	`
	var row problemStatsRow
	if err := sqlxGet(ctx, r.s, &row, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику проблем")
	}

	var categories []categoryCountRow
	if err := sqlxSelect(ctx, r.s, &categories,
		`SELECT category, COUNT(*) AS count FROM problems GROUP BY category ORDER BY category`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику по категориям")
	}

	stats := &repository.ProblemStats{
		Total:      row.Total,
		Active:     row.Active,
		Completed:  row.Completed,
		Rejected:   row.Rejected,
		ByCategory: make(map[valueobject.ProblemCategory]int, len(categories)),
		BySeverity: repository.SeverityBuckets{
			Critical: row.Critical,
			High:     row.High,
			Medium:   row.Medium,
			Low:      row.Low,
		},
	}
	for _, c := range categories {
		stats.ByCategory[valueobject.ProblemCategory(c.Category)] = c.Count
	}
	return stats, nil
}

type voteRow struct {
	ID        uuid.UUID `db:"id"`
	ProblemID uuid.UUID `db:"problem_id"`
	UserID    uuid.UUID `db:"user_id"`
	VoteType  string    `db:"vote_type"`
	CreatedAt time.Time `db:"created_at"`
}

type VoteRepository struct {
	s *Store
}

func (r *VoteRepository) Create(ctx context.Context, v *entity.Vote) error {
	_, err := r.s.ext.ExecContext(ctx,
		`INSERT INTO votes (id, problem_id, user_id, vote_type, created_at) VALUES ($1, $2, $3, $4, $5)`,
		v.ID, v.ProblemID, v.UserID, string(v.Type), v.CreatedAt)
	if err != nil {
		return common.MapError(err, "не удалось сохранить голос")
	}
	return nil
}

func (r *VoteRepository) Update(ctx context.Context, v *entity.Vote) error {
	return common.ExecAffected(ctx, r.s.ext, apperror.New(apperror.ErrCodeNotFound, "голос не найден"),
		"не удалось обновить голос", `UPDATE votes SET vote_type = $2 WHERE id = $1`, v.ID, string(v.Type))
}

func (r *VoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.s.ext.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, id); err != nil {
		return common.MapError(err, "не удалось удалить голос")
	}
	return nil
}

func (r *VoteRepository) FindByProblemAndUser(ctx context.Context, problemID, userID uuid.UUID) (*entity.Vote, error) {
	row, err := common.GetOne[voteRow](ctx, r.s.ext, errNoRow,
		`SELECT id, problem_id, user_id, vote_type, created_at FROM votes WHERE problem_id = $1 AND user_id = $2`,
		problemID, userID)
	if err == errNoRow {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.Vote{
		ID:        row.ID,
		ProblemID: row.ProblemID,
		UserID:    row.UserID,
		Type:      valueobject.VoteType(row.VoteType),
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *VoteRepository) CountByType(ctx context.Context, problemID uuid.UUID, t valueobject.VoteType) (int, error) {
	var n int
	if err := sqlxGet(ctx, r.s, &n, `SELECT COUNT(*) FROM votes WHERE problem_id = $1 AND vote_type = $2`, problemID, string(t)); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать голоса")
	}
	return n, nil
}

// errNoRow - внутренний маркер отсутствия строки для методов, возвращающих nil, nil.
var errNoRow = apperror.New(apperror.ErrCodeNotFound, "")

type commentRow struct {
	ID        uuid.UUID `db:"id"`
	ProblemID uuid.UUID `db:"problem_id"`
	UserID    uuid.UUID `db:"user_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

type CommentRepository struct {
	s *Store
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	_, err := r.s.ext.ExecContext(ctx,
		`INSERT INTO comments (id, problem_id, user_id, text, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.ProblemID, c.UserID, c.Text, c.CreatedAt)
	if err != nil {
		return common.MapError(err, "не удалось сохранить комментарий")
	}
	return nil
}

func (r *CommentRepository) ListByProblem(ctx context.Context, problemID uuid.UUID) ([]*entity.Comment, error) {
	var rows []commentRow
	if err := sqlxSelect(ctx, r.s, &rows,
		`SELECT id, problem_id, user_id, text, created_at FROM comments WHERE problem_id = $1 ORDER BY created_at`,
		problemID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить комментарии")
	}
	comments := make([]*entity.Comment, len(rows))
	for i, row := range rows {
		comments[i] = &entity.Comment{ID: row.ID, ProblemID: row.ProblemID, UserID: row.UserID, Text: row.Text, CreatedAt: row.CreatedAt}
	}
	return comments, nil
}

type completionRow struct {
	ID          uuid.UUID `db:"id"`
	ProblemID   uuid.UUID `db:"problem_id"`
	UserID      uuid.UUID `db:"user_id"`
	BeforePhoto *string   `db:"before_photo"`
	AfterPhoto  *string   `db:"after_photo"`
	Description string    `db:"description"`
	Rating      *int      `db:"rating"`
	CreatedAt   time.Time `db:"created_at"`
}

type TaskCompletionRepository struct {
	s *Store
}

func (r *TaskCompletionRepository) Create(ctx context.Context, c *entity.TaskCompletion) error {
	_, err := r.s.ext.ExecContext(ctx, `
		INSERT INTO task_completions (id, problem_id, user_id, before_photo, after_photo, description, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ProblemID, c.UserID, c.BeforePhoto, c.AfterPhoto, c.Description, c.Rating, c.CreatedAt)
	if err != nil {
		return common.MapError(err, "не удалось сохранить отчёт о выполнении")
	}
	return nil
}

func (r *TaskCompletionRepository) FindByProblem(ctx context.Context, problemID uuid.UUID) (*entity.TaskCompletion, error) {
	row, err := common.GetOne[completionRow](ctx, r.s.ext, errNoRow, `
		SELECT id, problem_id, user_id, before_photo, after_photo, description, rating, created_at
		FROM task_completions WHERE problem_id = $1`, problemID)
	if err == errNoRow {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.TaskCompletion{
		ID:          row.ID,
		ProblemID:   row.ProblemID,
		UserID:      row.UserID,
		BeforePhoto: row.BeforePhoto,
		AfterPhoto:  row.AfterPhoto,
		Description: row.Description,
		Rating:      row.Rating,
		CreatedAt:   row.CreatedAt,
	}, nil
}
