package db

import (
	"log"

	"tasktracker/internal/domain/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func Migration(dbDSN, migratePath string) error {
	if dbDSN == "" {
		return errors.ErrMigrationDSNEmpty
	}
	if migratePath == "" {
		return errors.ErrMigrationPathEmpty
	}

	m, err := migrate.New("file://"+migratePath, dbDSN)
	if err != nil {
		log.Println("[ERROR] Не удалось инициализировать миграции:", err)
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Println("[ERROR] Не удалось закрыть источник миграций:", srcErr)
		}
		if dbErr != nil {
			log.Println("[ERROR] Не удалось закрыть соединение миграций:", dbErr)
		}
	}()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Println("[ERROR] Не удалось применить миграции:", err)
		return err
	}
	return nil
}
