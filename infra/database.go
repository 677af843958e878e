package infra

import (
	"errors"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	databaseMutex sync.Mutex
	database      *gorm.DB
)

// GetDatabase opens the Postgres database at url once per process.
func GetDatabase(url string) (*gorm.DB, error) {
	databaseMutex.Lock()
	defer databaseMutex.Unlock()

	if database != nil {
		return database, nil
	}

	if url == "" {
		return nil, errors.New("missing database url - set database.url or DATASERVICE_DATABASE_URL")
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	database = db
	return database, nil
}
