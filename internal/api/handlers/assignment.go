package handlers

import (
	"net/http"

	"classroom-service/internal/models"
	"classroom-service/internal/services"
	"classroom-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	hub               *websocket.Hub
}

func NewAssignmentHandler(assignmentService *services.AssignmentService, hub *websocket.Hub) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		hub:               hub,
	}
}

// Create godoc
// @Summary Create an assignment
// @Description Publish an assignment in a course. Creator only. Course
// subscribers get an assignment_created event.
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body models.AssignmentCreateRequest true "Assignment data"
// @Success 201 {object} models.AssignmentResponse "Assignment created"
// @Failure 400 {object} models.ErrorResponse "Invalid grading configuration"
// @Failure 403 {object} models.ErrorResponse "Not the creator"
// @Router /courses/{id}/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.AssignmentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.assignmentService.Create(courseID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.CourseTopic(courseID), websocket.EventAssignmentCreated, resp)
	c.JSON(http.StatusCreated, resp)
}

func (h *AssignmentHandler) ListByCourse(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.assignmentService.ListByCourse(courseID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMine aggregates the caller's assignments across all their courses.
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	resp, err := h.assignmentService.ListMine(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.assignmentService.Get(assignmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssignmentHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.AssignmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.assignmentService.Update(assignmentID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.CourseTopic(resp.CourseID), websocket.EventAssignmentUpdated, resp)
	h.hub.BroadcastToTopic(websocket.AssignmentTopic(assignmentID), websocket.EventAssignmentUpdated, resp)
	c.JSON(http.StatusOK, resp)
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Load before deleting so the event can carry the course.
	resp, err := h.assignmentService.Get(assignmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.assignmentService.Delete(c.Request.Context(), assignmentID, userID); err != nil {
		respondError(c, err)
		return
	}

	payload := assignmentDeletedPayload(assignmentID)
	h.hub.BroadcastToTopic(websocket.CourseTopic(resp.CourseID), websocket.EventAssignmentDeleted, payload)
	h.hub.BroadcastToTopic(websocket.AssignmentTopic(assignmentID), websocket.EventAssignmentDeleted, payload)
	c.JSON(http.StatusOK, models.StatusResponse{Message: "assignment deleted"})
}

// MarkViewed records that the student opened the assignment.
func (h *AssignmentHandler) MarkViewed(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.MarkViewed(assignmentID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "marked as read"})
}

/** ---------------- files ---------------- */

func (h *AssignmentHandler) UploadFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.assignmentService.UploadFile(c.Request.Context(), assignmentID, userID, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AssignmentHandler) DeleteFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	fileID, ok := paramID(c, "fileId")
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteFile(c.Request.Context(), assignmentID, fileID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "file deleted"})
}

// DownloadFile redirects to a short-lived presigned URL.
func (h *AssignmentHandler) DownloadFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	fileID, ok := paramID(c, "fileId")
	if !ok {
		return
	}

	url, err := h.assignmentService.FileDownloadURL(c.Request.Context(), assignmentID, fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
