package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"
)

// Storage — резервное хранилище в памяти. Используется, когда БД недоступна,
// и в тестах. Семантика операций повторяет repository/db, включая
// фильтрацию по владельцу прямо в выборке.
type Storage struct {
	mu       sync.RWMutex
	users    map[string]models.User
	tasks    map[string]models.Task
	projects map[string]models.Project
	tags     map[string]models.Tag
	taskTags map[string][]string
}

func NewStorage() *Storage {
	return &Storage{
		users:    make(map[string]models.User),
		tasks:    make(map[string]models.Task),
		projects: make(map[string]models.Project),
		tags:     make(map[string]models.Tag),
		taskTags: make(map[string][]string),
	}
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.ErrEmailTaken
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ProjectID != nil {
		if _, exists := s.projects[*task.ProjectID]; !exists {
			return errors.ErrInvalidProjectID
		}
	}

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks[task.ID] = *task
	s.attachAssociations(task)
	return nil
}

func (s *Storage) GetTaskByID(_ context.Context, id, userID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists || task.UserID != userID {
		return nil, errors.ErrNotFound
	}
	s.attachAssociations(&task)
	return &task, nil
}

func (s *Storage) GetTasks(_ context.Context, userID string, filter models.TaskFilter) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.ProjectID != "" && (task.ProjectID == nil || *task.ProjectID != filter.ProjectID) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		s.attachAssociations(&task)
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Storage) UpdateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.tasks[task.ID]
	if !exists || existing.UserID != task.UserID {
		return errors.ErrNotFound
	}
	if task.ProjectID != nil {
		if _, ok := s.projects[*task.ProjectID]; !ok {
			return errors.ErrInvalidProjectID
		}
	}

	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now()
	stored := *task
	stored.Project = nil
	stored.Tags = nil
	s.tasks[task.ID] = stored
	return nil
}

func (s *Storage) DeleteTask(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists || task.UserID != userID {
		return errors.ErrNotFound
	}
	delete(s.tasks, id)
	delete(s.taskTags, id)
	return nil
}

// AddProject и AddTag заполняют справочники, на которые ссылаются задачи.
func (s *Storage) AddProject(project models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = project
}

func (s *Storage) AddTag(tag models.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tag.ID] = tag
}

func (s *Storage) LinkTaskTag(taskID, tagID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskTags[taskID] = append(s.taskTags[taskID], tagID)
}

func (s *Storage) attachAssociations(task *models.Task) {
	task.Project = nil
	if task.ProjectID != nil {
		if p, ok := s.projects[*task.ProjectID]; ok {
			project := p
			task.Project = &project
		}
	}

	task.Tags = []models.TaskTag{}
	for _, tagID := range s.taskTags[task.ID] {
		if tag, ok := s.tags[tagID]; ok {
			task.Tags = append(task.Tags, models.TaskTag{
				TaskID: task.ID,
				TagID:  tagID,
				Tag:    tag,
			})
		}
	}
}
