package errors

import "errors"

var (
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrEmailTaken         = errors.New("email уже зарегистрирован")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrInvalidToken       = errors.New("недействительный или просроченный токен")
	ErrUnauthenticated    = errors.New("требуется авторизация")
	ErrNotFound           = errors.New("задача не найдена")
	ErrValidationFailed   = errors.New("ошибка валидации")
	ErrBadRequest         = errors.New("некорректные данные запроса")
	ErrInternalServer     = errors.New("внутренняя ошибка сервера")
	ErrDatabaseConnection = errors.New("ошибка соединения с базой данных")

	ErrInvalidEmail     = errors.New("некорректный email")
	ErrInvalidPassword  = errors.New("пароль должен содержать не менее 6 символов")
	ErrInvalidName      = errors.New("некорректное имя пользователя")
	ErrInvalidTitle     = errors.New("заголовок задачи должен содержать от 1 до 255 символов")
	ErrInvalidStatus    = errors.New("недопустимый статус задачи")
	ErrInvalidPriority  = errors.New("недопустимый приоритет задачи")
	ErrInvalidDueDate   = errors.New("некорректный формат срока выполнения")
	ErrInvalidProjectID = errors.New("некорректный идентификатор проекта")

	ErrMigrationDSNEmpty  = errors.New("не задана строка подключения для миграций")
	ErrMigrationPathEmpty = errors.New("не задан путь к папке с миграциями")

	ErrConfigFileReadFailed = errors.New("не удалось прочитать файл конфигурации")
	ErrConfigParseFailed    = errors.New("не удалось разобрать файл конфигурации")
	ErrConfigInvalidFormat  = errors.New("некорректное значение конфигурации")
)
