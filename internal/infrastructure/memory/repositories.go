package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.users[user.ID]; ok {
		return conflict("users.id")
	}
	if err := r.checkUnique(d, user); err != nil {
		return err
	}
	d.users[user.ID] = copyUser(*user)
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *entity.User) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.users[user.ID]; !ok {
		return apperror.ErrUserNotFound
	}
	if err := r.checkUnique(d, user); err != nil {
		return err
	}
	d.users[user.ID] = copyUser(*user)
	return nil
}

func (r *userRepo) checkUnique(d *state, user *entity.User) error {
	for id, u := range d.users {
		if id == user.ID {
			continue
		}
		switch {
		case strings.EqualFold(u.Username, user.Username):
			return conflict("users.username")
		case user.Email != "" && strings.EqualFold(u.Email, user.Email):
			return conflict("users.email")
		case user.ReferralCode != "" && u.ReferralCode == user.ReferralCode:
			return conflict("users.referral_code")
		}
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	defer r.s.lock()()
	u, ok := r.s.data().users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	c := copyUser(u)
	return &c, nil
}

func (r *userRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.FindByID(ctx, id)
}

func (r *userRepo) findBy(match func(entity.User) bool) (*entity.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data().users {
		if match(u) {
			c := copyUser(u)
			return &c, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findBy(func(u entity.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findBy(func(u entity.User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) })
}

func (r *userRepo) FindByReferralCode(ctx context.Context, code string) (*entity.User, error) {
	return r.findBy(func(u entity.User) bool { return u.ReferralCode == code })
}

func (r *userRepo) all() []*entity.User {
	out := make([]*entity.User, 0, len(r.s.data().users))
	for _, u := range r.s.data().users {
		c := copyUser(u)
		out = append(out, &c)
	}
	return out
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, int, error) {
	defer r.s.lock()()
	users := r.all()
	sortByCreated(users, func(u *entity.User) int64 { return u.CreatedAt.UnixNano() })
	return page(users, limit, offset), len(users), nil
}

func (r *userRepo) TopByPoints(ctx context.Context, limit int) ([]*entity.User, error) {
	defer r.s.lock()()
	users := r.all()
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return page(users, limit, 0), nil
}

func (r *userRepo) TopByReports(ctx context.Context, limit int) ([]*entity.User, error) {
	defer r.s.lock()()
	users := r.all()
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].TotalReports != users[j].TotalReports {
			return users[i].TotalReports > users[j].TotalReports
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return page(users, limit, 0), nil
}

func (r *userRepo) RankByPoints(ctx context.Context, id uuid.UUID) (int, error) {
	defer r.s.lock()()
	d := r.s.data()
	me, ok := d.users[id]
	if !ok {
		return 0, apperror.ErrUserNotFound
	}
	rank := 1
	for _, u := range d.users {
		if u.Points > me.Points || (u.Points == me.Points && u.CreatedAt.Before(me.CreatedAt)) {
			rank++
		}
	}
	return rank, nil
}

// --- problems ---

type problemRepo struct{ s *Store }

func (r *problemRepo) Create(ctx context.Context, problem *entity.Problem) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.problems[problem.ID]; ok {
		return conflict("problems.id")
	}
	d.problems[problem.ID] = *problem
	return nil
}

func (r *problemRepo) Update(ctx context.Context, problem *entity.Problem) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.problems[problem.ID]; !ok {
		return apperror.ErrProblemNotFound
	}
	d.problems[problem.ID] = *problem
	return nil
}

func (r *problemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.problems[id]; !ok {
		return apperror.ErrProblemNotFound
	}
	delete(d.problems, id)
	for k, v := range d.votes {
		if v.ProblemID == id {
			delete(d.votes, k)
		}
	}
	for k, c := range d.comments {
		if c.ProblemID == id {
			delete(d.comments, k)
		}
	}
	for k, c := range d.completions {
		if c.ProblemID == id {
			delete(d.completions, k)
		}
	}
	for k, c := range d.complaints {
		if c.ProblemID != nil && *c.ProblemID == id {
			delete(d.complaints, k)
		}
	}
	return nil
}

func (r *problemRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Problem, error) {
	defer r.s.lock()()
	p, ok := r.s.data().problems[id]
	if !ok {
		return nil, apperror.ErrProblemNotFound
	}
	return &p, nil
}

func (r *problemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Problem, error) {
	return r.FindByID(ctx, id)
}

func (r *problemRepo) TryClaim(ctx context.Context, id, userID uuid.UUID, at time.Time) (bool, error) {
	defer r.s.lock()()
	d := r.s.data()
	p, ok := d.problems[id]
	if !ok || !p.IsAvailable() {
		return false, nil
	}
	p.AssignedTo = &userID
	p.AssignedAt = &at
	p.Status = valueobject.ProblemStatusInProgress
	p.UpdatedAt = at
	d.problems[id] = p
	return true, nil
}

func (r *problemRepo) List(ctx context.Context, f repository.ProblemFilter) ([]*entity.Problem, error) {
	defer r.s.lock()()
	out := make([]*entity.Problem, 0)
	for _, p := range r.s.data().problems {
		if !matchProblem(p, f) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sortByCreated(out, func(p *entity.Problem) int64 { return p.CreatedAt.UnixNano() })
	return page(out, f.Limit, f.Offset), nil
}

func (r *problemRepo) Stats(ctx context.Context) (*repository.ProblemStats, error) {
	defer r.s.lock()()
	stats := &repository.ProblemStats{ByCategory: make(map[valueobject.ProblemCategory]int)}
	for _, p := range r.s.data().problems {
		stats.Total++
		switch p.Status {
		case valueobject.ProblemStatusReported, valueobject.ProblemStatusInProgress:
			stats.Active++
		case valueobject.ProblemStatusCompleted:
			stats.Completed++
		case valueobject.ProblemStatusRejected:
			stats.Rejected++
		}
		stats.ByCategory[p.Category]++
		switch {
		case p.Severity >= 5:
			stats.BySeverity.Critical++
		case p.Severity == 4:
			stats.BySeverity.High++
		case p.Severity == 3:
			stats.BySeverity.Medium++
		default:
			stats.BySeverity.Low++
		}
	}
	return stats, nil
}

func matchProblem(p entity.Problem, f repository.ProblemFilter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if p.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.AssignedTo != nil && !p.IsAssignedTo(*f.AssignedTo) {
		return false
	}
	if f.Unassigned && p.AssignedTo != nil {
		return false
	}
	return true
}

// --- votes ---

type voteRepo struct{ s *Store }

func (r *voteRepo) Create(ctx context.Context, vote *entity.Vote) error {
	defer r.s.lock()()
	d := r.s.data()
	for _, v := range d.votes {
		if v.ProblemID == vote.ProblemID && v.UserID == vote.UserID {
			return conflict("votes(problem_id, user_id)")
		}
	}
	if _, ok := d.problems[vote.ProblemID]; !ok {
		return apperror.ErrProblemNotFound
	}
	d.votes[vote.ID] = *vote
	return nil
}

func (r *voteRepo) Update(ctx context.Context, vote *entity.Vote) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.votes[vote.ID]; !ok {
		return apperror.New(apperror.ErrCodeNotFound, "голос не найден")
	}
	d.votes[vote.ID] = *vote
	return nil
}

func (r *voteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	delete(r.s.data().votes, id)
	return nil
}

func (r *voteRepo) FindByProblemAndUser(ctx context.Context, problemID, userID uuid.UUID) (*entity.Vote, error) {
	defer r.s.lock()()
	for _, v := range r.s.data().votes {
		if v.ProblemID == problemID && v.UserID == userID {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (r *voteRepo) CountByType(ctx context.Context, problemID uuid.UUID, t valueobject.VoteType) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, v := range r.s.data().votes {
		if v.ProblemID == problemID && v.Type == t {
			n++
		}
	}
	return n, nil
}

// --- comments ---

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.problems[comment.ProblemID]; !ok {
		return apperror.ErrProblemNotFound
	}
	d.comments[comment.ID] = *comment
	return nil
}

func (r *commentRepo) ListByProblem(ctx context.Context, problemID uuid.UUID) ([]*entity.Comment, error) {
	defer r.s.lock()()
	out := make([]*entity.Comment, 0)
	for _, c := range r.s.data().comments {
		if c.ProblemID == problemID {
			c := c
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- completions ---

type completionRepo struct{ s *Store }

func (r *completionRepo) Create(ctx context.Context, completion *entity.TaskCompletion) error {
	defer r.s.lock()()
	d := r.s.data()
	for _, c := range d.completions {
		if c.ProblemID == completion.ProblemID {
			return conflict("task_completions.problem_id")
		}
	}
	d.completions[completion.ID] = *completion
	return nil
}

func (r *completionRepo) FindByProblem(ctx context.Context, problemID uuid.UUID) (*entity.TaskCompletion, error) {
	defer r.s.lock()()
	for _, c := range r.s.data().completions {
		if c.ProblemID == problemID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

// --- complaints ---

type complaintRepo struct{ s *Store }

func (r *complaintRepo) Create(ctx context.Context, complaint *entity.Complaint) error {
	defer r.s.lock()()
	d := r.s.data()
	if complaint.ProblemID != nil {
		if _, ok := d.problems[*complaint.ProblemID]; !ok {
			return apperror.ErrProblemNotFound
		}
	}
	d.complaints[complaint.ID] = *complaint
	return nil
}

func (r *complaintRepo) Update(ctx context.Context, complaint *entity.Complaint) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.complaints[complaint.ID]; !ok {
		return apperror.ErrComplaintNotFound
	}
	d.complaints[complaint.ID] = *complaint
	return nil
}

func (r *complaintRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	defer r.s.lock()()
	c, ok := r.s.data().complaints[id]
	if !ok {
		return nil, apperror.ErrComplaintNotFound
	}
	return &c, nil
}

func (r *complaintRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	return r.FindByID(ctx, id)
}

func (r *complaintRepo) ListByStatus(ctx context.Context, status valueobject.ComplaintStatus, limit, offset int) ([]*entity.Complaint, error) {
	defer r.s.lock()()
	out := make([]*entity.Complaint, 0)
	for _, c := range r.s.data().complaints {
		if c.Status == status {
			c := c
			out = append(out, &c)
		}
	}
	sortByCreated(out, func(c *entity.Complaint) int64 { return c.CreatedAt.UnixNano() })
	return page(out, limit, offset), nil
}

// --- orders ---

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *entity.Order) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.users[order.UserID]; !ok {
		return apperror.ErrUserNotFound
	}
	d.orders[order.ID] = *order
	return nil
}

func (r *orderRepo) Update(ctx context.Context, order *entity.Order) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.orders[order.ID]; !ok {
		return apperror.ErrOrderNotFound
	}
	d.orders[order.ID] = *order
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.data().orders[id]
	if !ok {
		return nil, apperror.ErrOrderNotFound
	}
	return &o, nil
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepo) list(match func(entity.Order) bool) []*entity.Order {
	out := make([]*entity.Order, 0)
	for _, o := range r.s.data().orders {
		if match(o) {
			o := o
			out = append(out, &o)
		}
	}
	sortByCreated(out, func(o *entity.Order) int64 { return o.CreatedAt.UnixNano() })
	return out
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	defer r.s.lock()()
	return r.list(func(o entity.Order) bool { return o.UserID == userID }), nil
}

func (r *orderRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	defer r.s.lock()()
	return page(r.list(func(entity.Order) bool { return true }), limit, offset), nil
}

func (r *orderRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	defer r.s.lock()()
	return len(r.list(func(o entity.Order) bool { return o.UserID == userID })), nil
}

// --- ledger ---

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) Append(ctx context.Context, event *entity.PointEvent) error {
	defer r.s.lock()()
	d := r.s.data()
	if _, ok := d.users[event.UserID]; !ok {
		return apperror.ErrUserNotFound
	}
	d.events = append(d.events, *event)
	return nil
}

func (r *ledgerRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.PointEvent, error) {
	defer r.s.lock()()
	out := make([]*entity.PointEvent, 0)
	events := r.s.data().events
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].UserID == userID {
			e := events[i]
			out = append(out, &e)
		}
	}
	return page(out, limit, offset), nil
}

func (r *ledgerRepo) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	defer r.s.lock()()
	var sum int64
	for _, e := range r.s.data().events {
		if e.UserID == userID {
			sum += e.Delta
		}
	}
	return sum, nil
}
