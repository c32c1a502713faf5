// ABOUTME: Meal log, custom meal, and user profile operations over a gateway.
// ABOUTME: Meals are validated before every write; custom meals skip the date.
package meal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/myjot/internal/logging"
	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/storage"
)

// ErrNoUser is returned by User when no profile has been saved yet.
var ErrNoUser = errors.New("no user profile saved")

// Service reads and writes meals and the user profile.
type Service struct {
	gateway storage.Gateway
	log     *log.Logger
}

// NewService returns a service writing to g.
func NewService(g storage.Gateway, logger *log.Logger) *Service {
	return &Service{gateway: g, log: logging.OrDiscard(logger)}
}

func collection(custom bool) storage.Collection {
	if custom {
		return storage.CollCustomMeals
	}
	return storage.CollMealLog
}

// Add validates and stores a meal. A zero ID creates a new record; any
// other ID replaces it. Custom meals are stored without a date.
func (s *Service) Add(ctx context.Context, m *models.MealEntry, custom bool) (int64, error) {
	if custom {
		m.DateTime = nil
	}
	if err := m.Validate(custom); err != nil {
		return 0, err
	}
	id, err := s.gateway.Put(ctx, collection(custom), m)
	if err != nil {
		return 0, fmt.Errorf("save meal: %w", err)
	}
	s.log.Info("meal saved", "custom", custom, "id", id, "meal", m.MealName)
	return id, nil
}

// Get returns one meal.
func (s *Service) Get(ctx context.Context, id int64, custom bool) (*models.MealEntry, error) {
	m, err := storage.Get[models.MealEntry](ctx, s.gateway, collection(custom), id)
	if err != nil {
		return nil, fmt.Errorf("get meal %d: %w", id, err)
	}
	return m, nil
}

// List returns meals. Logged meals come newest first, custom meals by
// name. A positive limit caps the result.
func (s *Service) List(ctx context.Context, custom bool, limit int) ([]*models.MealEntry, error) {
	meals, err := storage.List[models.MealEntry](ctx, s.gateway, collection(custom))
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	if custom {
		sort.SliceStable(meals, func(i, j int) bool {
			return strings.ToLower(meals[i].MealName) < strings.ToLower(meals[j].MealName)
		})
	} else {
		sort.SliceStable(meals, func(i, j int) bool {
			return dateOf(meals[i]) > dateOf(meals[j])
		})
	}
	if limit > 0 && len(meals) > limit {
		meals = meals[:limit]
	}
	return meals, nil
}

func dateOf(m *models.MealEntry) string {
	if m.DateTime == nil {
		return ""
	}
	return *m.DateTime
}

// Delete removes one meal.
func (s *Service) Delete(ctx context.Context, id int64, custom bool) error {
	if err := s.gateway.Delete(ctx, collection(custom), id); err != nil {
		return fmt.Errorf("delete meal %d: %w", id, err)
	}
	return nil
}

// FromCustom logs a custom meal template as a meal eaten at dateTime.
func (s *Service) FromCustom(ctx context.Context, customID int64, dateTime string) (int64, error) {
	tmpl, err := s.Get(ctx, customID, true)
	if err != nil {
		return 0, err
	}
	entry := *tmpl
	entry.ID = 0
	entry.DateTime = &dateTime
	return s.Add(ctx, &entry, false)
}

// SetUser saves the single user profile, replacing any previous one.
func (s *Service) SetUser(ctx context.Context, name string) error {
	profile := &models.UserProfile{UserName: strings.TrimSpace(name)}
	if err := profile.Validate(); err != nil {
		return err
	}
	err := s.gateway.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollUser}, func(tx storage.Tx) error {
		if err := tx.Clear(storage.CollUser); err != nil {
			return err
		}
		_, err := tx.Put(storage.CollUser, profile)
		return err
	})
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// User returns the saved user profile.
func (s *Service) User(ctx context.Context) (*models.UserProfile, error) {
	users, err := storage.List[models.UserProfile](ctx, s.gateway, storage.CollUser)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNoUser
	}
	return users[0], nil
}
