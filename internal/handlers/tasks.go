package handlers

import (
	"errors"
	"net/http"

	"weektodo/backend/internal/models"
	"weektodo/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasks lists the inbox: tasks that belong to no list.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	tasks, err := h.taskService.ListInbox(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var patch models.TaskPatch
	if err := bindBody(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), patch)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var patch models.TaskPatch
	if err := bindBody(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) CreateListTask(c *gin.Context) {
	var patch models.TaskPatch
	if err := bindBody(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTaskInList(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) MoveTask(c *gin.Context) {
	task, err := h.taskService.MoveTask(c.Request.Context(), c.Param("id"), c.Param("taskId"))
	if errors.Is(err, services.ErrTaskNotFound) || errors.Is(err, services.ErrListNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task or List not found"})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
