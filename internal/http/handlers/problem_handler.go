package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/ecopulse/ecopulse-backend/internal/dto"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/problem"
	"github.com/ecopulse/ecopulse-backend/internal/validation"
)

// ProblemUseCases - сценарии, которые обслуживает ProblemHandler.
type ProblemUseCases struct {
	Report   *problem.ReportProblemUseCase
	Claim    *problem.ClaimProblemUseCase
	Release  *problem.ReleaseProblemUseCase
	Complete *problem.CompleteProblemUseCase
	Reject   *problem.RejectProblemUseCase
	Delete   *problem.DeleteProblemUseCase
	List     *problem.ListProblemsUseCase
	Get      *problem.GetProblemUseCase
	Comment  *problem.AddCommentUseCase
}

// ProblemHandler - карта проблем и задания.
type ProblemHandler struct {
	uc     ProblemUseCases
	photos PhotoStore
}

func NewProblemHandler(uc ProblemUseCases, photos PhotoStore) *ProblemHandler {
	return &ProblemHandler{uc: uc, photos: photos}
}

// List обрабатывает GET /api/problems?scope=active|available|mine&category=...
func (h *ProblemHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	scope := problem.Scope(c.DefaultQuery("scope", string(problem.ScopeActive)))
	items, err := h.uc.List.Execute(c.Request.Context(), problem.ListInput{
		Scope:    scope,
		UserID:   userID,
		Category: c.Query("category"),
		Limit:    common.ParseIntQuery(c, "limit", 0),
		Offset:   common.ParseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", gin.H{"problems": dto.NewProblemList(items)})
}

// Get обрабатывает GET /api/problems/:id.
func (h *ProblemHandler) Get(c *gin.Context) {
	problemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	details, err := h.uc.Get.Execute(c.Request.Context(), problemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", gin.H{
		"problem":    dto.NewProblemResponse(details.Problem),
		"comments":   dto.NewCommentList(details.Comments),
		"completion": dto.NewCompletionResponse(details.Completion),
	})
}

// Report обрабатывает POST /api/problems. Фото передаётся в поле photo формы.
func (h *ProblemHandler) Report(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ReportProblemRequest
	if err := c.ShouldBindWith(&req, bindingFor(c)); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, "ошибка валидации запроса: "+err.Error()))
		return
	}
	if err := validation.ValidateProblemTitle(req.Title); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()))
		return
	}
	if err := validation.ValidateProblemDescription(req.Description); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()))
		return
	}

	saved := &savedPhotos{store: h.photos}
	photo, err := saved.save(c, userID, "photo")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.uc.Report.Execute(c.Request.Context(), problem.ReportInput{
		ReporterID:  userID,
		Title:       req.Title,
		Description: req.Description,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Category:    req.Category,
		Severity:    req.Severity,
		Photo:       photo,
	})
	if err != nil {
		saved.rollback(c.Request.Context())
		response.Error(c, err)
		return
	}

	response.Created(c, "проблема добавлена", gin.H{
		"problem":        dto.NewProblemResponse(result.Problem),
		"points_awarded": result.PointsAwarded,
		"balance":        result.Reporter.Points,
		"new_badges":     result.NewBadges,
	})
}

// Claim обрабатывает POST /api/problems/:id/take.
func (h *ProblemHandler) Claim(c *gin.Context) {
	userID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	p, err := h.uc.Claim.Execute(c.Request.Context(), problemID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "задание взято в работу", gin.H{"problem": dto.NewProblemResponse(p)})
}

// Release обрабатывает POST /api/problems/:id/release.
func (h *ProblemHandler) Release(c *gin.Context) {
	userID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	p, err := h.uc.Release.Execute(c.Request.Context(), problemID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "задание освобождено", gin.H{"problem": dto.NewProblemResponse(p)})
}

// Complete обрабатывает POST /api/problems/:id/complete. Если в форме есть фото,
// описание или оценка, задание завершается с фотоотчётом.
func (h *ProblemHandler) Complete(c *gin.Context) {
	userID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	var req dto.CompleteProblemRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindWith(&req, bindingFor(c)); err != nil {
			response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, "ошибка валидации запроса: "+err.Error()))
			return
		}
	}

	saved := &savedPhotos{store: h.photos}
	before, err := saved.save(c, userID, "before_photo")
	if err != nil {
		response.Error(c, err)
		return
	}
	after, err := saved.save(c, userID, "after_photo")
	if err != nil {
		saved.rollback(c.Request.Context())
		response.Error(c, err)
		return
	}

	var result *problem.CompleteResult
	if before != nil || after != nil || strings.TrimSpace(req.Description) != "" || req.Rating != nil {
		result, err = h.uc.Complete.ExecuteWithReport(c.Request.Context(), problemID, userID, problem.CompletionReport{
			BeforePhoto: before,
			AfterPhoto:  after,
			Description: req.Description,
			Rating:      req.Rating,
		})
	} else {
		result, err = h.uc.Complete.Execute(c.Request.Context(), problemID, userID)
	}
	if err != nil {
		saved.rollback(c.Request.Context())
		response.Error(c, err)
		return
	}

	response.Success(c, "задание выполнено", gin.H{
		"problem":        dto.NewProblemResponse(result.Problem),
		"completion":     dto.NewCompletionResponse(result.Completion),
		"points_awarded": result.PointsAwarded,
		"balance":        result.Actor.Points,
		"new_badges":     result.NewBadges,
	})
}

// Reject обрабатывает POST /api/admin/problems/:id/reject.
func (h *ProblemHandler) Reject(c *gin.Context) {
	adminID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	p, err := h.uc.Reject.Execute(c.Request.Context(), problemID, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "проблема отклонена", gin.H{"problem": dto.NewProblemResponse(p)})
}

// Delete обрабатывает DELETE /api/admin/problems/:id и удаляет фото проблемы.
func (h *ProblemHandler) Delete(c *gin.Context) {
	adminID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	deleted, err := h.uc.Delete.Execute(c.Request.Context(), problemID, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	removePhoto(c.Request.Context(), h.photos, deleted.Photo)

	response.Success(c, "проблема удалена", gin.H{"problem_id": deleted.ID})
}

// AddComment обрабатывает POST /api/problems/:id/comments.
func (h *ProblemHandler) AddComment(c *gin.Context) {
	userID, problemID, ok := actorAndID(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := h.uc.Comment.Execute(c.Request.Context(), problemID, userID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "", gin.H{"comment": dto.NewCommentResponse(comment)})
}

func bindingFor(c *gin.Context) binding.Binding {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return binding.FormMultipart
	}
	if c.ContentType() == binding.MIMEPOSTForm {
		return binding.Form
	}
	return binding.JSON
}
