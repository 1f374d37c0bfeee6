package valueobject

import "github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"

// PointReason - причина изменения баланса баллов.
type PointReason string

const (
	ReasonProblemReported  PointReason = "problem_reported"
	ReasonProblemCompleted PointReason = "problem_completed"
	ReasonReferralBonus    PointReason = "referral_bonus"
	ReasonShopOrder        PointReason = "shop_order"
	ReasonOrderRefund      PointReason = "order_refund"
	ReasonAdminAdjustment  PointReason = "admin_adjustment"
)

func (r PointReason) IsValid() bool {
	switch r {
	case ReasonProblemReported, ReasonProblemCompleted, ReasonReferralBonus,
		ReasonShopOrder, ReasonOrderRefund, ReasonAdminAdjustment:
		return true
	}
	return false
}

// IsDebit сообщает, что списание по этой причине не может уводить баланс в минус.
func (r PointReason) IsDebit() bool {
	return r == ReasonShopOrder || r == ReasonAdminAdjustment
}

func NewPointReason(reason string) (PointReason, error) {
	r := PointReason(reason)
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректная причина начисления")
	}
	return r, nil
}
