package exhibitions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

// Input is the admin create/update payload.
type Input struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Images      []string  `json:"images"`
}

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context) ([]models.Exhibition, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Exhibition, error)
	Create(ctx context.Context, exhibition *models.Exhibition) error
	Update(ctx context.Context, exhibition *models.Exhibition) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service implements exhibition CRUD. Reads are public; writes are gated at
// the router.
type Service interface {
	List(ctx context.Context) ([]models.Exhibition, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Exhibition, error)
	Create(ctx context.Context, input Input) (*models.Exhibition, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Exhibition, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	store Store
}

// NewService wires the exhibition store.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "exhibition store required")
	}
	return &service{store: store}, nil
}

func (s *service) List(ctx context.Context) ([]models.Exhibition, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list exhibitions")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Exhibition, error) {
	exhibition, err := s.store.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "exhibition not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exhibition")
	}
	return exhibition, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Exhibition, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	exhibition := &models.Exhibition{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Location:    strings.TrimSpace(input.Location),
		Images:      pq.StringArray(input.Images),
	}
	if err := s.store.Create(ctx, exhibition); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create exhibition")
	}
	return exhibition, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Exhibition, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	exhibition, err := s.store.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "exhibition not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exhibition")
	}

	exhibition.Title = strings.TrimSpace(input.Title)
	exhibition.Description = input.Description
	exhibition.StartDate = input.StartDate
	exhibition.EndDate = input.EndDate
	exhibition.Location = strings.TrimSpace(input.Location)
	exhibition.Images = pq.StringArray(input.Images)

	if err := s.store.Update(ctx, exhibition); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update exhibition")
	}
	return exhibition, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete exhibition")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "exhibition not found")
	}
	return nil
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	return nil
}
