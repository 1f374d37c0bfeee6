package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ecopulse/ecopulse-backend/internal/dto"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/complaint"
	"github.com/ecopulse/ecopulse-backend/internal/validation"
)

type ComplaintHandler struct {
	file    *complaint.FileComplaintUseCase
	resolve *complaint.ResolveComplaintUseCase
	pending *complaint.ListPendingUseCase
}

func NewComplaintHandler(file *complaint.FileComplaintUseCase, resolve *complaint.ResolveComplaintUseCase, pending *complaint.ListPendingUseCase) *ComplaintHandler {
	return &ComplaintHandler{file: file, resolve: resolve, pending: pending}
}

// File обрабатывает POST /api/complaints.
func (h *ComplaintHandler) File(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ComplaintRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	problemID, err := parseUUID(req.ProblemID, "problem_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := validation.ValidateComplaintDescription(req.Description); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()))
		return
	}

	created, err := h.file.Execute(c.Request.Context(), problemID, userID, req.Reason, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "жалоба отправлена", gin.H{"complaint": dto.NewComplaintResponse(created)})
}

// Resolve обрабатывает POST /api/admin/complaints/:id/resolve.
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	adminID, complaintID, ok := actorAndID(c)
	if !ok {
		return
	}

	var req dto.ResolveComplaintRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.resolve.Execute(c.Request.Context(), complaint.ResolveInput{
		ComplaintID:   complaintID,
		AdminID:       adminID,
		Action:        req.Action,
		DeleteProblem: req.DeleteProblem,
		Comment:       req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "жалоба рассмотрена"
	if !result.Changed {
		message = "жалоба уже закрыта"
	}
	response.Success(c, message, gin.H{
		"complaint":          dto.NewComplaintResponse(result.Complaint),
		"deleted_problem_id": result.DeletedProblemID,
		"changed":            result.Changed,
	})
}

// Pending обрабатывает GET /api/admin/complaints.
func (h *ComplaintHandler) Pending(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	items, err := h.pending.Execute(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{"complaints": dto.NewComplaintList(items)})
}
