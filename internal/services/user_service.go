package services

import (
	"errors"
	"fmt"

	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/repositories"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	userRepo *repositories.UserRepository
}

func NewUserService(userRepo *repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// EnsureUser provisions the user on first sight and keeps their profile in step with the token.
// A user whose token now names a different organization is moved to it.
func (s *UserService) EnsureUser(claimed *models.User) (*models.User, error) {
	if err := claimed.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByID(claimed.ID)
	if errors.Is(err, models.ErrNotFound) {
		if err := s.userRepo.Create(claimed); err != nil {
			return nil, fmt.Errorf("error provisioning user: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"user_id": claimed.ID,
			"org_id":  claimed.OrgID,
		}).Info("Provisioned user")
		return claimed, nil
	}
	if err != nil {
		return nil, err
	}

	if existing.OrgID == claimed.OrgID && existing.Email == claimed.Email && existing.Name == claimed.Name {
		return existing, nil
	}

	existing.OrgID = claimed.OrgID
	existing.Email = claimed.Email
	existing.Name = claimed.Name
	if err := s.userRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return existing, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}
