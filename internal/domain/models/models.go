package models

import "time"

type User struct {
	ID        string    `json:"id" validate:"omitempty,uuid"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"-"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type TaskTag struct {
	TaskID string `json:"taskId"`
	TagID  string `json:"tagId"`
	Tag    Tag    `json:"tag"`
}

// Task.CompletedAt не nil тогда и только тогда, когда Status == completed.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt"`
	UserID      string     `json:"userId"`
	ProjectID   *string    `json:"projectId,omitempty"`
	Project     *Project   `json:"project,omitempty"`
	Tags        []TaskTag  `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusArchived   = "archived"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status" validate:"omitempty,oneof=todo in_progress completed archived"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     string `json:"dueDate" validate:"omitempty"`
	ProjectID   string `json:"projectId" validate:"omitempty,uuid"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"omitempty,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status" validate:"omitempty,oneof=todo in_progress completed archived"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     string `json:"dueDate" validate:"omitempty"`
	ProjectID   string `json:"projectId" validate:"omitempty,uuid"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress completed archived"`
}

// TaskFilter — типизированный фильтр списка задач. Пустое поле означает
// отсутствие ограничения; произвольные ключи клиента сюда не попадают.
type TaskFilter struct {
	Status    string
	Priority  string
	ProjectID string
	Search    string
}
