package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationTrimStoredSubmissionFields = "2026-07-14_trim_stored_submission_fields"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationTrimStoredSubmissionFields, apply: trimStoredSubmissionFields},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Rows written before sanitization trimmed whitespace keep their original
// padding; normalize them once so exports match freshly stored rows.
func trimStoredSubmissionFields(db *gorm.DB) error {
	const stmt = "UPDATE submissions SET " +
		"name = trim(name), farm = trim(farm), email = trim(email), phone = trim(phone), " +
		"farm_type = trim(farm_type), farm_size = trim(farm_size), message = trim(message);"
	return db.Exec(stmt).Error
}
