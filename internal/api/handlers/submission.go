package handlers

import (
	"net/http"

	"classroom-service/internal/models"
	"classroom-service/internal/services"
	"classroom-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	hub               *websocket.Hub
}

func NewSubmissionHandler(submissionService *services.SubmissionService, hub *websocket.Hub) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		hub:               hub,
	}
}

// Create godoc
// @Summary Submit an attempt
// @Description Record a new attempt for the assignment. Subscribers of
// the assignment topic get a submission_created event.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body models.SubmissionCreateRequest true "Submission content"
// @Success 201 {object} models.SubmissionResponse "Attempt recorded"
// @Failure 400 {object} models.ErrorResponse "Attempt limit reached"
// @Failure 403 {object} models.ErrorResponse "Not a member or is the creator"
// @Router /assignments/{id}/submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.SubmissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.submissionService.Create(assignmentID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.AssignmentTopic(assignmentID), websocket.EventSubmissionCreated, resp)
	c.JSON(http.StatusCreated, resp)
}

// ListByAssignment serves the creator every attempt, ungraded first.
func (h *SubmissionHandler) ListByAssignment(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.ListByAssignment(assignmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMine returns the caller's own attempts.
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.ListMine(assignmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListUngraded serves the creator the assignment's ungraded attempts.
func (h *SubmissionHandler) ListUngraded(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.ListUngradedByAssignment(assignmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AttemptsInfo reports attempts burned against the limit.
func (h *SubmissionHandler) AttemptsInfo(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.AttemptsInfo(assignmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.Get(submissionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Grade godoc
// @Summary Grade an attempt
// @Description Set or replace the score. The assignment topic gets a
// submission_graded event; the student additionally gets a personal
// submission_graded_personal event on all their connections.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param request body models.SubmissionGradeRequest true "Score and comment"
// @Success 200 {object} models.SubmissionResponse "Graded"
// @Failure 400 {object} models.ErrorResponse "Score does not fit the grading configuration"
// @Failure 403 {object} models.ErrorResponse "Not the creator"
// @Router /submissions/{id}/grade [post]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.SubmissionGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.submissionService.Grade(submissionID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.AssignmentTopic(resp.AssignmentID), websocket.EventSubmissionGraded, resp)
	h.hub.SendToUser(resp.StudentID, websocket.EventSubmissionGradedOwn, resp)
	c.JSON(http.StatusOK, resp)
}

// MarkViewed flags the attempt as seen by the teacher.
func (h *SubmissionHandler) MarkViewed(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.MarkViewed(submissionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.AssignmentTopic(resp.AssignmentID), websocket.EventSubmissionViewed, resp)
	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.Get(submissionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.submissionService.Delete(submissionID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.AssignmentTopic(resp.AssignmentID), websocket.EventSubmissionDeleted,
		submissionDeletedPayload(submissionID))
	c.JSON(http.StatusOK, models.StatusResponse{Message: "submission deleted"})
}

/** ---------------- files ---------------- */

func (h *SubmissionHandler) UploadFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.submissionService.UploadFile(c.Request.Context(), submissionID, userID, file)
	if err != nil {
		respondError(c, err)
		return
	}

	// The attachment changes what the teacher sees, so it counts as an
	// update to the submission.
	if sub, err := h.submissionService.Get(submissionID, userID); err == nil {
		h.hub.BroadcastToTopic(websocket.AssignmentTopic(sub.AssignmentID), websocket.EventSubmissionUpdated, sub)
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SubmissionHandler) DeleteFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	fileID, ok := paramID(c, "fileId")
	if !ok {
		return
	}

	if err := h.submissionService.DeleteFile(c.Request.Context(), submissionID, fileID, userID); err != nil {
		respondError(c, err)
		return
	}

	if sub, err := h.submissionService.Get(submissionID, userID); err == nil {
		h.hub.BroadcastToTopic(websocket.AssignmentTopic(sub.AssignmentID), websocket.EventSubmissionUpdated, sub)
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "file deleted"})
}

func (h *SubmissionHandler) DownloadFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	fileID, ok := paramID(c, "fileId")
	if !ok {
		return
	}

	url, err := h.submissionService.FileDownloadURL(c.Request.Context(), submissionID, fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
