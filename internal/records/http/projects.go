package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrimeSandy/Alpha-Dev/internal/auth"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/service"
)

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "Failed to fetch projects")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) createProject(c *gin.Context) {
	var in service.ProjectInput
	if err := bindJSON(c, &in); err != nil {
		badBody(c)
		return
	}

	p, err := h.projects.Create(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		h.writeError(c, err, "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateProject(c *gin.Context) {
	var in service.ProjectInput
	if err := bindJSON(c, &in); err != nil {
		badBody(c)
		return
	}

	p, err := h.projects.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to delete project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
