package database

import (
	"fmt"

	"classroom-service/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPostgresConnection(dburi string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dburi), &gorm.Config{
		PrepareStmt:            false,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)

	if err := db.AutoMigrate(
		&models.User{},
		&models.PendingRegistration{},
		&models.Course{},
		&models.CourseMember{},
		&models.Assignment{},
		&models.AssignmentFile{},
		&models.AssignmentView{},
		&models.Submission{},
		&models.SubmissionFile{},
		&models.ChatMessage{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	if err := addIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to add indexes: %v", err)
	}

	return db, nil
}

func addIndexes(db *gorm.DB) error {
	// Indexes for the hot lookup paths not covered by model tags
	indexes := []struct {
		table   string
		columns []string
	}{
		{"chat_messages", []string{"assignment_id", "created_at"}},
		{"submissions", []string{"assignment_id", "student_id"}},
	}

	for _, idx := range indexes {
		indexName := fmt.Sprintf("idx_%s", idx.table)
		for _, column := range idx.columns {
			indexName += "_" + column
		}
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			indexName, idx.table, joinColumns(idx.columns))
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
