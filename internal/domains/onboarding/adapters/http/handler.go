package onboardinghttp

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/http/mapper"
	onboardingapp "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application"
	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	apierrors "github.com/Apurer/provider-onboarding/internal/shared/errors"
)

const (
	maxDocumentBytes = 10 << 20
	multipartMemory  = 8 << 20
)

// OnboardingAPI exposes the onboarding wizard over HTTP.
type OnboardingAPI struct {
	service   ports.Service
	responder *apierrors.Responder
}

// NewOnboardingAPI creates handlers backed by the onboarding service.
func NewOnboardingAPI(service ports.Service) *OnboardingAPI {
	return &OnboardingAPI{
		service:   service,
		responder: apierrors.NewResponder("", MapError),
	}
}

// Post /v1/onboarding/sessions
func (api *OnboardingAPI) StartSession(c *gin.Context) {
	session, err := api.service.StartSession(c.Request.Context())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+session.Entity.ID)
	c.JSON(http.StatusCreated, mapper.FromProjection(session))
}

// Get /v1/onboarding/sessions/:sessionId
func (api *OnboardingAPI) GetSession(c *gin.Context) {
	session, err := api.service.GetSession(c.Request.Context(), sessionIdentifier(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Get /v1/onboarding/sessions/:sessionId/outcomes
func (api *OnboardingAPI) ListOutcomes(c *gin.Context) {
	entries, err := api.service.ListOutcomes(c.Request.Context(), sessionIdentifier(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": mapper.FromOutcomes(entries)})
}

// Post /v1/onboarding/sessions/:sessionId/basic-info
// Multipart form with the text fields and one file per required document.
func (api *OnboardingAPI) SubmitBasicInfo(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		api.responder.BadRequest(c, "expected a multipart form: "+err.Error())
		return
	}
	var form mapper.BasicInfoForm
	if err := c.ShouldBind(&form); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	var documents []domain.Document
	for _, kind := range domain.RequiredDocuments {
		field := mapper.DocumentFields[kind]
		header, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			api.responder.BadRequest(c, err.Error())
			return
		}
		data, err := readUpload(header, maxDocumentBytes)
		if err != nil {
			api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{field: err.Error()}))
			return
		}
		documents = append(documents, domain.Document{
			Kind:        kind,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	session, err := api.service.SubmitBasicInfo(c.Request.Context(), onboardingtypes.RegistrationInput{
		SessionID: c.Param("sessionId"),
		Info:      mapper.ToBasicInfo(form),
		Documents: documents,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Post /v1/onboarding/sessions/:sessionId/categories/:categoryId/toggle
func (api *OnboardingAPI) ToggleCategory(c *gin.Context) {
	categoryID, ok := api.parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	result, err := api.service.ToggleCategory(c.Request.Context(), onboardingtypes.ToggleCategoryInput{
		SessionID:  c.Param("sessionId"),
		CategoryID: categoryID,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.CategoryToggle{Selected: result.Selected, Session: mapper.FromProjection(result.Session)})
}

// Post /v1/onboarding/sessions/:sessionId/categories
func (api *OnboardingAPI) SubmitCategories(c *gin.Context) {
	var payload mapper.CategorySubmission
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			api.responder.BadRequest(c, err.Error())
			return
		}
	}
	session, err := api.service.SubmitCategories(c.Request.Context(), onboardingtypes.CategorySubmissionInput{
		SessionID:   c.Param("sessionId"),
		CategoryIDs: payload.CategoryIDs,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Put /v1/onboarding/sessions/:sessionId/draft
func (api *OnboardingAPI) UpdateDraftFields(c *gin.Context) {
	var payload mapper.DraftFields
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	session, err := api.service.UpdateDraftFields(c.Request.Context(), mapper.ToDraftFieldsInput(c.Param("sessionId"), payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Delete /v1/onboarding/sessions/:sessionId/draft
func (api *OnboardingAPI) DiscardDraft(c *gin.Context) {
	session, err := api.service.DiscardDraft(c.Request.Context(), sessionIdentifier(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Post /v1/onboarding/sessions/:sessionId/draft/schedules
func (api *OnboardingAPI) AddScheduleEntry(c *gin.Context) {
	var payload mapper.ScheduleEntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	input, err := mapper.ToScheduleEntryInput(c.Param("sessionId"), payload)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	result, err := api.service.AddScheduleEntry(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.ScheduleEntryChange{
		Entry:   mapper.FromScheduleEntry(result.Entry),
		Session: mapper.FromProjection(result.Session),
	})
}

// Patch /v1/onboarding/sessions/:sessionId/draft/schedules/:entryId
func (api *OnboardingAPI) UpdateScheduleEntry(c *gin.Context) {
	var payload mapper.ScheduleEntryPatch
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	input, err := mapper.ToScheduleEntryPatchInput(c.Param("sessionId"), c.Param("entryId"), payload)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	result, err := api.service.UpdateScheduleEntry(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ScheduleEntryChange{
		Entry:   mapper.FromScheduleEntry(result.Entry),
		Session: mapper.FromProjection(result.Session),
	})
}

// Delete /v1/onboarding/sessions/:sessionId/draft/schedules/:entryId
func (api *OnboardingAPI) RemoveScheduleEntry(c *gin.Context) {
	session, err := api.service.RemoveScheduleEntry(c.Request.Context(), onboardingtypes.ScheduleEntryRef{
		SessionID: c.Param("sessionId"),
		EntryID:   c.Param("entryId"),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Get /v1/onboarding/sessions/:sessionId/draft/schedules/suggestion
func (api *OnboardingAPI) SuggestWeekday(c *gin.Context) {
	suggestion, err := api.service.SuggestWeekday(c.Request.Context(), sessionIdentifier(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.WeekdaySuggestion{Weekday: domain.WeekdayName(suggestion.Weekday)})
}

// Post /v1/onboarding/sessions/:sessionId/draft/photos
func (api *OnboardingAPI) AttachPhoto(c *gin.Context) {
	header, err := c.FormFile(mapper.FieldPhoto)
	if err != nil {
		api.responder.BadRequest(c, fmt.Sprintf("multipart field %q is required", mapper.FieldPhoto))
		return
	}
	data, err := readUpload(header, domain.MaxPhotoBytes)
	if err != nil {
		api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{mapper.FieldPhoto: err.Error()}))
		return
	}
	session, err := api.service.AttachPhoto(c.Request.Context(), onboardingtypes.PhotoInput{
		SessionID: c.Param("sessionId"),
		Filename:  header.Filename,
		Data:      data,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromProjection(session))
}

// Delete /v1/onboarding/sessions/:sessionId/draft/photos/:photoId
func (api *OnboardingAPI) RemovePhoto(c *gin.Context) {
	session, err := api.service.RemovePhoto(c.Request.Context(), onboardingtypes.PhotoRef{
		SessionID: c.Param("sessionId"),
		PhotoID:   c.Param("photoId"),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Post /v1/onboarding/sessions/:sessionId/draft/submit
// 200 when the service is complete, 202 when it awaits acknowledgement, 502 when it failed.
func (api *OnboardingAPI) SubmitCurrentDraft(c *gin.Context) {
	result, err := api.service.SubmitCurrentDraft(c.Request.Context(), sessionIdentifier(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	body := mapper.FromSubmission(result)
	switch result.Report.Status {
	case onboardingtypes.EntryAwaitingAcknowledgement:
		c.JSON(http.StatusAccepted, body)
	case onboardingtypes.EntryFailed:
		problem := apierrors.ErrBadGateway.WithExtension("report", body.Report).WithExtension("session", body.Session)
		if f := result.Report.Failure; f != nil {
			problem = problem.WithDetail(fmt.Sprintf("%s failed: %s", f.Operation, f.Reason))
		}
		api.responder.Respond(c, problem)
	default:
		c.JSON(http.StatusOK, body)
	}
}

// Post /v1/onboarding/sessions/:sessionId/draft/acknowledgement
func (api *OnboardingAPI) AcknowledgeAmbiguous(c *gin.Context) {
	var payload mapper.Acknowledgement
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, "accept is required")
		return
	}
	session, err := api.service.AcknowledgeAmbiguous(c.Request.Context(), onboardingtypes.AcknowledgementInput{
		SessionID: c.Param("sessionId"),
		Accept:    *payload.Accept,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProjection(session))
}

// Post /v1/onboarding/sessions/:sessionId/finish
func (api *OnboardingAPI) Finish(c *gin.Context) {
	result, err := api.service.Finish(c.Request.Context(), sessionIdentifier(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromFinish(result))
}

func (api *OnboardingAPI) parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		api.responder.BadRequest(c, fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

func sessionIdentifier(c *gin.Context) onboardingtypes.SessionIdentifier {
	return onboardingtypes.SessionIdentifier{SessionID: c.Param("sessionId")}
}

func readUpload(header *multipart.FileHeader, limit int64) ([]byte, error) {
	if header.Size > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}

// MapError translates onboarding application errors into problem details.
func MapError(err error) (apierrors.ProblemDetail, bool) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return apierrors.NewValidationProblem(verr.Fields), true
	}
	var remote *onboardingapp.RemoteFailureError
	if errors.As(err, &remote) {
		problem := apierrors.ErrBadGateway
		if remote.Ambiguous {
			problem = apierrors.ErrAmbiguous
		}
		problem = problem.WithDetail(remote.Error()).WithExtension("operation", remote.Operation)
		if remote.Status != 0 {
			problem = problem.WithExtension("upstreamStatus", remote.Status)
		}
		return problem, true
	}
	switch {
	case errors.Is(err, onboardingapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, onboardingapp.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, onboardingapp.ErrNotAllowed):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
