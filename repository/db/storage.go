package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 15 * time.Second

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Storage struct {
	pool *pgxpool.Pool

	sqlCreateUser     string
	sqlGetUserByEmail string
	sqlGetUserByID    string

	sqlCreateTask  string
	sqlGetTaskByID string
	sqlUpdateTask  string
	sqlDeleteTask  string

	sqlGetProjects string
	sqlGetTaskTags string
}

func NewStorage(connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Println("[ERROR] Не удалось разобрать строку подключения:", err)
		return nil, errors.ErrDatabaseConnection
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Println("[ERROR] Не удалось подключиться к базе данных:", err)
		return nil, errors.ErrDatabaseConnection
	}

	s := &Storage{
		pool: pool,

		sqlCreateUser: `INSERT INTO users (id, email, password, name)
			VALUES ($1, $2, $3, NULLIF($4, ''))
			RETURNING created_at, updated_at`,
		sqlGetUserByEmail: `SELECT id, email, password, COALESCE(name, ''), created_at, updated_at
			FROM users WHERE email = $1`,
		sqlGetUserByID: `SELECT id, email, password, COALESCE(name, ''), created_at, updated_at
			FROM users WHERE id = $1`,

		sqlCreateTask: `INSERT INTO tasks (id, title, description, status, priority, due_date, completed_at, user_id, project_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at`,
		sqlGetTaskByID: `SELECT id, title, description, status, priority, due_date, completed_at, user_id, project_id, created_at, updated_at
			FROM tasks WHERE id = $1 AND user_id = $2`,
		sqlUpdateTask: `UPDATE tasks
			SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, completed_at = $6, project_id = $7, updated_at = NOW()
			WHERE id = $8 AND user_id = $9`,
		sqlDeleteTask: `DELETE FROM tasks WHERE id = $1 AND user_id = $2`,

		sqlGetProjects: `SELECT id, name, COALESCE(description, ''), COALESCE(color, ''), user_id, created_at, updated_at
			FROM projects WHERE id = ANY($1)`,
		sqlGetTaskTags: `SELECT tt.task_id, t.id, t.name, COALESCE(t.color, ''), t.user_id, t.created_at
			FROM task_tags tt JOIN tags t ON t.id = tt.tag_id
			WHERE tt.task_id = ANY($1)`,
	}
	log.Println("[SUCCESS] Соединение с базой данных установлено успешно")
	return s, nil
}

func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, s.sqlCreateUser, user.ID, user.Email, user.Password, user.Name)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if isPgErrCode(err, pgUniqueViolation) {
			log.Println("[ERROR] Email уже зарегистрирован:", user.Email)
			return errors.ErrEmailTaken
		}
		log.Println("[ERROR] Не удалось создать пользователя:", err)
		return err
	}
	log.Println("[SUCCESS] Пользователь успешно создан:", user.ID)
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, s.sqlGetUserByEmail, email)
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Name, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] Ошибка при получении пользователя:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, s.sqlGetUserByID, id)
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Name, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] Ошибка при получении пользователя:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, s.sqlCreateTask,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.CompletedAt, task.UserID, task.ProjectID)
	if err := row.Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		if isPgErrCode(err, pgForeignKeyViolation) {
			log.Println("[ERROR] Задача ссылается на несуществующий проект:", task.ProjectID)
			return errors.ErrInvalidProjectID
		}
		log.Println("[ERROR] Не удалось создать задачу:", err)
		return err
	}
	if err := s.attachAssociations(ctx, []*models.Task{task}); err != nil {
		return err
	}
	log.Println("[SUCCESS] Задача успешно создана:", task.ID)
	return nil
}

// GetTaskByID ищет задачу сразу по паре (id, владелец): чужая задача
// неотличима от несуществующей.
func (s *Storage) GetTaskByID(ctx context.Context, id, userID string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, s.sqlGetTaskByID, id, userID)
	task := &models.Task{}
	if err := scanTask(row, task); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		log.Println("[ERROR] Ошибка при получении задачи:", err)
		return nil, err
	}
	if err := s.attachAssociations(ctx, []*models.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Storage) GetTasks(ctx context.Context, userID string, filter models.TaskFilter) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, title, description, status, priority, due_date, completed_at, user_id, project_id, created_at, updated_at
		FROM tasks WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.Println("[ERROR] Не удалось получить задачи:", err)
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task := models.Task{}
		if err := scanTask(rows, &task); err != nil {
			log.Println("[ERROR] Ошибка при чтении задач:", err)
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*models.Task, len(tasks))
	for i := range tasks {
		refs[i] = &tasks[i]
	}
	if err := s.attachAssociations(ctx, refs); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, s.sqlUpdateTask,
		task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.CompletedAt, task.ProjectID, task.ID, task.UserID)
	if err != nil {
		if isPgErrCode(err, pgForeignKeyViolation) {
			return errors.ErrInvalidProjectID
		}
		log.Println("[ERROR] Не удалось обновить задачу:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	log.Println("[SUCCESS] Задача успешно обновлена:", task.ID)
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, s.sqlDeleteTask, id, userID)
	if err != nil {
		log.Println("[ERROR] Не удалось удалить задачу:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	log.Println("[SUCCESS] Задача успешно удалена:", id)
	return nil
}

// attachAssociations подгружает проекты и теги для уже выбранных задач.
func (s *Storage) attachAssociations(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	taskIDs := make([]string, 0, len(tasks))
	projectIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		if t.ProjectID != nil {
			projectIDs = append(projectIDs, *t.ProjectID)
		}
		t.Tags = []models.TaskTag{}
	}

	if len(projectIDs) > 0 {
		rows, err := s.pool.Query(ctx, s.sqlGetProjects, projectIDs)
		if err != nil {
			log.Println("[ERROR] Не удалось получить проекты задач:", err)
			return err
		}
		defer rows.Close()

		projects := map[string]models.Project{}
		for rows.Next() {
			p := models.Project{}
			if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return err
			}
			projects[p.ID] = p
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for _, t := range tasks {
			if t.ProjectID != nil {
				if p, ok := projects[*t.ProjectID]; ok {
					project := p
					t.Project = &project
				}
			}
		}
	}

	rows, err := s.pool.Query(ctx, s.sqlGetTaskTags, taskIDs)
	if err != nil {
		log.Println("[ERROR] Не удалось получить теги задач:", err)
		return err
	}
	defer rows.Close()

	tagsByTask := map[string][]models.TaskTag{}
	for rows.Next() {
		tt := models.TaskTag{}
		if err := rows.Scan(&tt.TaskID, &tt.Tag.ID, &tt.Tag.Name, &tt.Tag.Color, &tt.Tag.UserID, &tt.Tag.CreatedAt); err != nil {
			return err
		}
		tt.TagID = tt.Tag.ID
		tagsByTask[tt.TaskID] = append(tagsByTask[tt.TaskID], tt)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, t := range tasks {
		if tags, ok := tagsByTask[t.ID]; ok {
			t.Tags = tags
		}
	}
	return nil
}

func scanTask(row pgx.Row, task *models.Task) error {
	return row.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&task.DueDate, &task.CompletedAt, &task.UserID, &task.ProjectID,
		&task.CreatedAt, &task.UpdatedAt)
}

func isPgErrCode(err error, code string) bool {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code == code
	}
	return false
}
