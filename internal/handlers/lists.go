package handlers

import (
	"net/http"

	"weektodo/backend/internal/models"
	"weektodo/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ListHandler struct {
	listService services.ListService
}

func NewListHandler(listService services.ListService) *ListHandler {
	return &ListHandler{listService: listService}
}

func (h *ListHandler) GetLists(c *gin.Context) {
	lists, err := h.listService.ListLists(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *ListHandler) CreateList(c *gin.Context) {
	var input models.ListInput
	if err := bindBody(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.listService.CreateList(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// DeleteList removes the list and every task in it. Unknown ids succeed.
func (h *ListHandler) DeleteList(c *gin.Context) {
	if err := h.listService.DeleteList(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
