package handlers

import (
	"net/http"
	"strconv"

	"classroom-service/internal/models"
	"classroom-service/internal/services"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courseService     *services.CourseService
	submissionService *services.SubmissionService
}

func NewCourseHandler(courseService *services.CourseService, submissionService *services.SubmissionService) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		submissionService: submissionService,
	}
}

// Create godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CourseCreateRequest true "Course data"
// @Success 201 {object} models.CourseResponse "Course created"
// @Failure 400 {object} models.ErrorResponse "Invalid input"
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	var req models.CourseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.courseService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CourseHandler) ListMine(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var archived *bool
	if raw, ok := c.GetQuery("archived"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "BAD_REQUEST", Message: "archived must be a boolean"})
			return
		}
		archived = &v
	}

	resp, err := h.courseService.ListMine(userID, archived)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CourseHandler) Get(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.courseService.Get(courseID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CourseHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CourseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.courseService.Update(courseID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(courseID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "course deleted"})
}

func (h *CourseHandler) Archive(c *gin.Context) {
	h.setArchived(c, true)
}

func (h *CourseHandler) Unarchive(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *CourseHandler) setArchived(c *gin.Context, archived bool) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.courseService.SetArchived(courseID, userID, archived)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Join godoc
// @Summary Join a course by code
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CourseJoinRequest true "Join code"
// @Success 200 {object} models.CourseResponse "Joined"
// @Failure 400 {object} models.ErrorResponse "Invalid code or archived course"
// @Failure 409 {object} models.ErrorResponse "Already a member"
// @Router /courses/join [post]
func (h *CourseHandler) Join(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	var req models.CourseJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.courseService.Join(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CourseHandler) Leave(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Leave(courseID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "left course"})
}

func (h *CourseHandler) ListMembers(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.courseService.ListMembers(courseID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CourseHandler) RemoveMember(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	memberID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.courseService.RemoveMember(courseID, userID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "member removed"})
}

// Gradebook godoc
// @Summary Course score matrix
// @Description One row per student, one column per assignment. Creator only.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} models.GradebookResponse "Gradebook"
// @Failure 403 {object} models.ErrorResponse "Not the creator"
// @Router /courses/{id}/gradebook [get]
func (h *CourseHandler) Gradebook(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.courseService.Gradebook(courseID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListUngraded returns the creator's grading queue for the course.
func (h *CourseHandler) ListUngraded(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.submissionService.ListUngradedByCourse(courseID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
