package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ecopulse/ecopulse-backend/internal/dto"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/vote"
)

type VoteHandler struct {
	vote   *vote.VoteUseCase
	status *vote.GetVoteStatusUseCase
}

func NewVoteHandler(v *vote.VoteUseCase, status *vote.GetVoteStatusUseCase) *VoteHandler {
	return &VoteHandler{vote: v, status: status}
}

// Vote обрабатывает POST /api/problems/:id/vote {type: like|dislike}.
// Повторный голос того же типа снимает его.
func (h *VoteHandler) Vote(c *gin.Context) {
	userID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	var req dto.VoteRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	st, err := h.vote.Execute(c.Request.Context(), problemID, userID, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", voteBody(st))
}

// Status обрабатывает GET /api/problems/:id/vote.
func (h *VoteHandler) Status(c *gin.Context) {
	userID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	st, err := h.status.Execute(c.Request.Context(), problemID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", voteBody(st))
}

func voteBody(st *vote.Status) gin.H {
	var userVote *string
	if st.UserVote != nil {
		v := string(*st.UserVote)
		userVote = &v
	}
	return gin.H{
		"problem_id": st.ProblemID,
		"user_vote":  userVote,
		"likes":      st.Likes,
		"dislikes":   st.Dislikes,
	}
}
