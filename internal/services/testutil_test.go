package services

import (
	"fmt"
	"testing"

	"github.com/stackroom/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	testUserSeq++
	user := models.User{
		Email:        fmt.Sprintf("%s%d@example.com", username, testUserSeq),
		Username:     fmt.Sprintf("%s%d", username, testUserSeq),
		PasswordHash: "x",
		FirstName:    username,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createTestProject(t *testing.T, db *gorm.DB, name string, ownerID uint) *models.Project {
	t.Helper()
	project := models.Project{Name: name, OwnerID: ownerID}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return &project
}

func addTestCollaborator(t *testing.T, db *gorm.DB, projectID, userID uint) {
	t.Helper()
	row := models.ProjectCollaborator{ProjectID: projectID, UserID: userID, Role: "collaborator"}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("add collaborator: %v", err)
	}
}

func createTestStack(t *testing.T, db *gorm.DB, projectID, userID uint, topic string) *models.Stack {
	t.Helper()
	stack := models.Stack{ProjectID: projectID, Topic: topic, CreatedBy: userID}
	if err := db.Create(&stack).Error; err != nil {
		t.Fatalf("create stack %s: %v", topic, err)
	}
	return &stack
}

func createTestDocument(t *testing.T, db *gorm.DB, projectID, userID uint, name string) *models.Document {
	t.Helper()
	doc := models.Document{
		ProjectID: &projectID,
		Name:      name,
		FilePath:  "uploads/documents/" + name,
		MimeType:  "application/pdf",
		FileSize:  1024,
		CreatedBy: userID,
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("create document %s: %v", name, err)
	}
	return &doc
}
