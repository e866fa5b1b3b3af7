package application_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/shuttle/pkg/application"
)

func TestInitService_InitializeWorkspace(t *testing.T) {
	repo := NewMockRepo()
	service := application.NewInitService(repo, nil)

	if err := service.InitializeWorkspace(); err != nil {
		t.Fatalf("InitializeWorkspace failed: %v", err)
	}
	if !repo.Initialized {
		t.Error("repository not initialized")
	}

	err := service.InitializeWorkspace()
	if !errors.Is(err, application.ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
}
