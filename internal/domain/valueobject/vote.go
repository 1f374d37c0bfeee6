package valueobject

import "github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"

type VoteType string

const (
	VoteLike    VoteType = "like"
	VoteDislike VoteType = "dislike"
)

func (v VoteType) IsValid() bool {
	return v == VoteLike || v == VoteDislike
}

func NewVoteType(v string) (VoteType, error) {
	t := VoteType(v)
	if !t.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "тип голоса должен быть like или dislike")
	}
	return t, nil
}
