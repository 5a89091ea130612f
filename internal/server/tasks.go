package server

import (
	"log"
	"net/http"
	"time"

	"tasktracker/internal/auth"
	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
)

var allowedTaskStatuses = map[string]bool{
	models.TaskStatusTodo:       true,
	models.TaskStatusInProgress: true,
	models.TaskStatusCompleted:  true,
	models.TaskStatusArchived:   true,
}

var allowedTaskPriorities = map[string]bool{
	models.TaskPriorityLow:    true,
	models.TaskPriorityMedium: true,
	models.TaskPriorityHigh:   true,
	models.TaskPriorityUrgent: true,
}

func (api *TaskAPI) getTasks(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx)

	filter, err := taskFilterFromQuery(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := api.tasks.GetTasks(ctx.Request.Context(), userID, filter)
	if err != nil {
		log.Println("[ERROR] Не удалось получить задачи:", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	ctx.JSON(http.StatusOK, tasks)
}

func (api *TaskAPI) getTaskByID(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx)
	taskID := ctx.Param("taskID")

	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID, userID)
	if err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (api *TaskAPI) createTask(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx)

	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidDueDate.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	// Владелец всегда берётся из токена; поле клиента с чужим owner
	// сюда попасть не может.
	task := models.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		UserID:      userID,
		Tags:        []models.TaskTag{},
	}
	if req.ProjectID != "" {
		projectID := req.ProjectID
		task.ProjectID = &projectID
	}
	syncCompletedAt(&task, status)

	if err := api.tasks.CreateTask(ctx.Request.Context(), &task); err != nil {
		if err == errors.ErrInvalidProjectID {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidProjectID.Error()})
			return
		}
		log.Println("[ERROR] Не удалось создать задачу:", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx)
	taskID := ctx.Param("taskID")

	var req models.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidDueDate.Error()})
		return
	}

	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID, userID)
	if err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if dueDate != nil {
		task.DueDate = dueDate
	}
	if req.ProjectID != "" {
		projectID := req.ProjectID
		task.ProjectID = &projectID
	}
	if req.Status != "" {
		task.Status = req.Status
		syncCompletedAt(task, req.Status)
	}

	// Запрос UPDATE сам фильтрует по владельцу, так что проверка выше и
	// фильтр в запросе дублируют друг друга намеренно.
	if err := api.tasks.UpdateTask(ctx.Request.Context(), task); err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	updated, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID, userID)
	if err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx)
	taskID := ctx.Param("taskID")

	if _, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID, userID); err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	if err := api.tasks.DeleteTask(ctx.Request.Context(), taskID, userID); err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (api *TaskAPI) updateTaskStatus(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx)
	taskID := ctx.Param("taskID")

	var req models.UpdateTaskStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID, userID)
	if err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	task.Status = req.Status
	syncCompletedAt(task, req.Status)

	if err := api.tasks.UpdateTask(ctx.Request.Context(), task); err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	updated, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID, userID)
	if err != nil {
		api.respondTaskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// respondTaskError отдаёт 404 и для чужих задач: существование чужой записи
// не должно отличаться от её отсутствия.
func (api *TaskAPI) respondTaskError(ctx *gin.Context, err error) {
	if err == errors.ErrNotFound {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrNotFound.Error()})
		return
	}
	log.Println("[ERROR] Ошибка при работе с задачей:", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
}

func taskFilterFromQuery(ctx *gin.Context) (models.TaskFilter, error) {
	filter := models.TaskFilter{
		Status:    ctx.Query("status"),
		Priority:  ctx.Query("priority"),
		ProjectID: ctx.Query("projectId"),
		Search:    ctx.Query("search"),
	}

	if filter.Status != "" && !allowedTaskStatuses[filter.Status] {
		return models.TaskFilter{}, errors.ErrInvalidStatus
	}
	if filter.Priority != "" && !allowedTaskPriorities[filter.Priority] {
		return models.TaskFilter{}, errors.ErrInvalidPriority
	}
	if filter.ProjectID != "" {
		if _, err := uuid.Parse(filter.ProjectID); err != nil {
			return models.TaskFilter{}, errors.ErrInvalidProjectID
		}
	}

	return filter, nil
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// syncCompletedAt поддерживает инвариант: completedAt заполнен только у задач
// в статусе completed. Повторный перевод в тот же статус ничего не меняет.
func syncCompletedAt(task *models.Task, status string) {
	if status == models.TaskStatusCompleted {
		if task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
		return
	}
	task.CompletedAt = nil
}
