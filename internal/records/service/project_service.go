package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/internal/logging"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/repository"
)

// ProjectInput is the body of a project create or update. Nil fields are
// absent from the request.
type ProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Budget      *Amount `json:"budget"`
	Status      *string `json:"status"`
}

// ProjectService handles owner-scoped project operations.
type ProjectService struct {
	store  repository.ProjectStore
	logger *zap.Logger
	now    func() time.Time
}

func NewProjectService(store repository.ProjectStore, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{store: store, logger: logger.Named("projects"), now: time.Now}
}

func (s *ProjectService) Create(ctx context.Context, uid string, in ProjectInput) (*domain.Project, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}

	var missing []string
	if blank(in.Name) {
		missing = append(missing, "name")
	}
	if blank(in.StartDate) {
		missing = append(missing, "startDate")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("missing required fields", missing...)
	}

	patch, err := in.patch()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Project{
		UserID:    uid,
		Name:      *patch.Name,
		StartDate: *patch.StartDate,
		EndDate:   patch.EndDate,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}

	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, domain.Persistence("create project", err)
	}
	logging.For(ctx, s.logger).Info("project created", zap.String("project_id", p.ID))
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, uid, id string) (*domain.Project, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, uid, id)
	if err != nil {
		return nil, domain.Persistence("get project", err)
	}
	return p, nil
}

// List returns the owner's projects, newest first.
func (s *ProjectService) List(ctx context.Context, uid string) ([]domain.Project, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	items, err := s.store.ListProjects(ctx, uid)
	if err != nil {
		return nil, domain.Persistence("list projects", err)
	}
	return items, nil
}

// Update applies the provided fields and stamps updatedAt.
func (s *ProjectService) Update(ctx context.Context, uid, id string, in ProjectInput) (*domain.Project, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	patch, err := in.patch()
	if err != nil {
		return nil, err
	}

	p, err := s.store.UpdateProject(ctx, uid, id, patch, s.now().UTC())
	if err != nil {
		return nil, domain.Persistence("update project", err)
	}
	return p, nil
}

// Delete removes the project together with all of its bookings.
func (s *ProjectService) Delete(ctx context.Context, uid, id string) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	n, err := s.store.DeleteProjectCascade(ctx, uid, id)
	if err != nil {
		return domain.Persistence("delete project", err)
	}
	logging.For(ctx, s.logger).Info("project deleted",
		zap.String("project_id", id),
		zap.Int64("bookings_removed", n),
	)
	return nil
}

// patch validates the provided fields and converts them to a store patch.
func (in ProjectInput) patch() (domain.ProjectPatch, error) {
	var patch domain.ProjectPatch

	if err := checkText("name", in.Name); err != nil {
		return patch, err
	}
	if err := checkText("description", in.Description); err != nil {
		return patch, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return patch, domain.NewValidationError("name must not be blank", "name")
		}
		patch.Name = &name
	}
	patch.Description = in.Description

	if in.StartDate != nil {
		t, err := parseDate("startDate", *in.StartDate)
		if err != nil {
			return patch, err
		}
		patch.StartDate = &t
	}
	if !blank(in.EndDate) {
		t, err := parseDate("endDate", *in.EndDate)
		if err != nil {
			return patch, err
		}
		patch.EndDate = &t
	}
	if in.Budget != nil {
		b := float64(*in.Budget)
		patch.Budget = &b
	}
	if in.Status != nil {
		st := domain.Status(strings.TrimSpace(*in.Status))
		if !domain.IsProjectStatus(st) {
			return patch, domain.NewValidationError("invalid status", "status")
		}
		patch.Status = &st
	}
	return patch, nil
}
