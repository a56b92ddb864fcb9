package handlers

import (
	"net/http"

	"classroom-service/internal/models"
	"classroom-service/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	resp, err := h.adminService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID := c.MustGet("user_id").(uint)
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(adminID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "user deleted"})
}

func (h *AdminHandler) SetAdmin(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.adminService.SetAdmin(userID, req.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListCourses(c *gin.Context) {
	adminID := c.MustGet("user_id").(uint)

	resp, err := h.adminService.ListCourses(adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteCourse(courseID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: "course deleted"})
}

func (h *AdminHandler) ListCourseMembers(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.adminService.ListCourseMembers(courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListCourseAssignments(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.adminService.ListCourseAssignments(courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
