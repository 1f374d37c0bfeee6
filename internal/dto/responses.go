// Package dto - JSON представления сущностей для HTTP слоя.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
)

// UploadsPrefix - URL, под которым раздаются загруженные фото.
const UploadsPrefix = "/uploads/"

type UserResponse struct {
	ID             uuid.UUID      `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email,omitempty"`
	Points         int64          `json:"points"`
	Experience     int64          `json:"experience"`
	Level          int            `json:"level"`
	Badges         []entity.Badge `json:"badges"`
	IsAdmin        bool           `json:"is_admin"`
	IsWorker       bool           `json:"is_worker"`
	Avatar         *string        `json:"avatar,omitempty"`
	City           string         `json:"city"`
	Language       string         `json:"language"`
	ReferralCode   string         `json:"referral_code,omitempty"`
	ReferralPoints int64          `json:"referral_points"`
	Stats          UserStats      `json:"stats"`
	Rank           int            `json:"rank,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

type UserStats struct {
	TotalReports     int `json:"total_reports"`
	TotalCompleted   int `json:"total_completed"`
	TotalPointsAdded int `json:"total_points_added"`
	TotalLikesGiven  int `json:"total_likes_given"`
	TotalComments    int `json:"total_comments"`
	TotalPhotos      int `json:"total_photos"`
}

// NewUserResponse строит профиль. Приватные поля (email, реферальный код)
// показываются только владельцу или администратору.
func NewUserResponse(u *entity.User, private bool) UserResponse {
	badges := u.Badges
	if badges == nil {
		badges = entity.Badges{}
	}
	resp := UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Points:         u.Points,
		Experience:     u.Experience,
		Level:          u.Level,
		Badges:         badges,
		IsAdmin:        u.IsAdmin,
		IsWorker:       u.IsWorker,
		Avatar:         photoURL(u.Avatar),
		City:           u.City,
		Language:       u.Language,
		ReferralPoints: u.ReferralPoints,
		Stats: UserStats{
			TotalReports:     u.TotalReports,
			TotalCompleted:   u.TotalCompleted,
			TotalPointsAdded: u.TotalPointsAdded,
			TotalLikesGiven:  u.TotalLikesGiven,
			TotalComments:    u.TotalComments,
			TotalPhotos:      u.TotalPhotos,
		},
		CreatedAt: u.CreatedAt,
	}
	if private {
		resp.Email = u.Email
		resp.ReferralCode = u.ReferralCode
	}
	return resp
}

func NewUserList(users []*entity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = NewUserResponse(u, true)
	}
	return out
}

type ProblemResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Photo       *string    `json:"photo,omitempty"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Category    string     `json:"category"`
	Severity    int        `json:"severity"`
	Status      string     `json:"status"`
	Reward      int64      `json:"reward"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	CompletedBy *uuid.UUID `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Likes       int        `json:"likes"`
	Dislikes    int        `json:"dislikes"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewProblemResponse(p *entity.Problem) ProblemResponse {
	return ProblemResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Photo:       photoURL(p.Photo),
		Lat:         p.Lat,
		Lng:         p.Lng,
		Category:    string(p.Category),
		Severity:    int(p.Severity),
		Status:      string(p.Status),
		Reward:      p.Reward,
		AssignedTo:  p.AssignedTo,
		AssignedAt:  p.AssignedAt,
		CompletedBy: p.CompletedBy,
		CompletedAt: p.CompletedAt,
		Likes:       p.Likes,
		Dislikes:    p.Dislikes,
		CreatedAt:   p.CreatedAt,
	}
}

func NewProblemList(problems []*entity.Problem) []ProblemResponse {
	out := make([]ProblemResponse, len(problems))
	for i, p := range problems {
		out[i] = NewProblemResponse(p)
	}
	return out
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCommentResponse(c *entity.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, UserID: c.UserID, Text: c.Text, CreatedAt: c.CreatedAt}
}

func NewCommentList(comments []*entity.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = NewCommentResponse(c)
	}
	return out
}

type CompletionResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	BeforePhoto *string   `json:"before_photo,omitempty"`
	AfterPhoto  *string   `json:"after_photo,omitempty"`
	Description string    `json:"description"`
	Rating      *int      `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCompletionResponse(tc *entity.TaskCompletion) *CompletionResponse {
	if tc == nil {
		return nil
	}
	return &CompletionResponse{
		ID:          tc.ID,
		UserID:      tc.UserID,
		BeforePhoto: photoURL(tc.BeforePhoto),
		AfterPhoto:  photoURL(tc.AfterPhoto),
		Description: tc.Description,
		Rating:      tc.Rating,
		CreatedAt:   tc.CreatedAt,
	}
}

type ComplaintResponse struct {
	ID           uuid.UUID  `json:"id"`
	ProblemID    *uuid.UUID `json:"problem_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Reason       string     `json:"reason"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy   *uuid.UUID `json:"resolved_by,omitempty"`
	ActionTaken  *string    `json:"action_taken,omitempty"`
	AdminComment *string    `json:"admin_comment,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewComplaintResponse(c *entity.Complaint) ComplaintResponse {
	resp := ComplaintResponse{
		ID:           c.ID,
		ProblemID:    c.ProblemID,
		UserID:       c.UserID,
		Reason:       string(c.Reason),
		Description:  c.Description,
		Status:       string(c.Status),
		ResolvedAt:   c.ResolvedAt,
		ResolvedBy:   c.ResolvedBy,
		AdminComment: c.AdminComment,
		CreatedAt:    c.CreatedAt,
	}
	if c.ActionTaken != nil {
		action := string(*c.ActionTaken)
		resp.ActionTaken = &action
	}
	return resp
}

func NewComplaintList(complaints []*entity.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, len(complaints))
	for i, c := range complaints {
		out[i] = NewComplaintResponse(c)
	}
	return out
}

type OrderResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    int       `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	Total     int64     `json:"total"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone,omitempty"`
	Size      *string   `json:"size,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewOrderResponse(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		ItemID:    o.ItemID,
		ItemName:  o.ItemName,
		Price:     o.Price,
		Quantity:  o.Quantity,
		Total:     o.Total(),
		Address:   o.Address,
		Phone:     o.Phone,
		Size:      o.Size,
		Comment:   o.Comment,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func NewOrderList(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = NewOrderResponse(o)
	}
	return out
}

type PointEventResponse struct {
	ID        uuid.UUID  `json:"id"`
	Delta     int64      `json:"delta"`
	Reason    string     `json:"reason"`
	RefID     *uuid.UUID `json:"ref_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewPointEventList(events []*entity.PointEvent) []PointEventResponse {
	out := make([]PointEventResponse, len(events))
	for i, e := range events {
		out[i] = PointEventResponse{ID: e.ID, Delta: e.Delta, Reason: string(e.Reason), RefID: e.RefID, CreatedAt: e.CreatedAt}
	}
	return out
}

type ActiveUserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Avatar       *string   `json:"avatar,omitempty"`
	Points       int64     `json:"points"`
	Level        int       `json:"level"`
	TotalReports int       `json:"total_reports"`
}

type PrioritiesResponse struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

type AnalyticsResponse struct {
	City        string               `json:"city"`
	Total       int                  `json:"total"`
	Active      int                  `json:"active"`
	Completed   int                  `json:"completed"`
	Rejected    int                  `json:"rejected"`
	Categories  map[string]int       `json:"categories"`
	Priorities  PrioritiesResponse   `json:"priorities"`
	ActiveUsers []ActiveUserResponse `json:"active_users"`
}

func NewAnalyticsResponse(city string, stats *repository.ProblemStats, active []*entity.User) AnalyticsResponse {
	resp := AnalyticsResponse{
		City:       city,
		Total:      stats.Total,
		Active:     stats.Active,
		Completed:  stats.Completed,
		Rejected:   stats.Rejected,
		Categories: make(map[string]int, len(stats.ByCategory)),
		Priorities: PrioritiesResponse{
			Critical: stats.BySeverity.Critical,
			High:     stats.BySeverity.High,
			Medium:   stats.BySeverity.Medium,
			Low:      stats.BySeverity.Low,
		},
		ActiveUsers: make([]ActiveUserResponse, len(active)),
	}
	for c, n := range stats.ByCategory {
		resp.Categories[string(c)] = n
	}
	for i, u := range active {
		resp.ActiveUsers[i] = ActiveUserResponse{
			ID:           u.ID,
			Username:     u.Username,
			Avatar:       photoURL(u.Avatar),
			Points:       u.Points,
			Level:        u.Level,
			TotalReports: u.TotalReports,
		}
	}
	return resp
}

// photoURL превращает относительный путь хранилища в URL.
func photoURL(path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	url := UploadsPrefix + *path
	return &url
}
