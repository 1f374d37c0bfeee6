package dto

type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email"`
	Password     string `json:"password" binding:"required"`
	City         string `json:"city"`
	ReferralCode string `json:"referral_code"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ReportProblemRequest принимается как form-data (с фото) или JSON.
type ReportProblemRequest struct {
	Title       string  `form:"title" json:"title" binding:"required"`
	Description string  `form:"description" json:"description"`
	Lat         float64 `form:"lat" json:"lat"`
	Lng         float64 `form:"lng" json:"lng"`
	Category    string  `form:"category" json:"category"`
	Severity    int     `form:"severity" json:"severity"`
}

type CompleteProblemRequest struct {
	Description string `form:"description" json:"description"`
	Rating      *int   `form:"rating" json:"rating"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type VoteRequest struct {
	Type string `json:"type" binding:"required"`
}

type ComplaintRequest struct {
	ProblemID   string `json:"problem_id" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
}

type ResolveComplaintRequest struct {
	Action        string `json:"action" binding:"required"`
	DeleteProblem bool   `json:"delete_problem"`
	Comment       string `json:"comment"`
}

type PlaceOrderRequest struct {
	ItemID   int    `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1,max=10"`
	Address  string `json:"address" binding:"required"`
	Phone    string `json:"phone"`
	Size     string `json:"size"`
	Comment  string `json:"comment"`
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AdjustBalanceRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Delta  int64  `json:"delta" binding:"required"`
}

type UpdateProfileRequest struct {
	City     *string `json:"city"`
	Language *string `json:"language"`
}
