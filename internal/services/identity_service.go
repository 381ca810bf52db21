package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type IdentityServiceImpl struct {
	staff      repositories.StaffRepositoryContract
	sessionTTL time.Duration
	now        func() time.Time
	cost       int
	logger     zerolog.Logger
}

func NewIdentityService(staff repositories.StaffRepositoryContract, sessionTTL time.Duration, logger zerolog.Logger) IdentityServiceContract {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &IdentityServiceImpl{
		staff:      staff,
		sessionTTL: sessionTTL,
		now:        time.Now,
		cost:       bcrypt.DefaultCost,
		logger:     logger.With().Str("component", "identity").Logger(),
	}
}

func validRole(role string) bool {
	switch role {
	case entities.RoleNurse, entities.RolePharmacist, entities.RoleAdmin:
		return true
	}
	return false
}

func (s *IdentityServiceImpl) Register(ctx context.Context, username, displayName, password, role string) (*entities.Staff, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, invalid("username", "El usuario es obligatorio")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minPasswordLength))
	}
	if !validRole(role) {
		return nil, invalid("role", "Rol desconocido")
	}

	if _, err := s.staff.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	member := &entities.Staff{
		Username:     username,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("creating staff %s: %w", username, err)
	}
	s.logger.Info().Str("username", username).Str("role", role).Msg("staff_registered")
	return member, nil
}

func (s *IdentityServiceImpl) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	member, err := s.staff.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("loading staff %s: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("username", username).Msg("login_rejected")
		return nil, ErrInvalidCredentials
	}

	session := &entities.Session{
		Token:     uuid.New(),
		StaffID:   member.ID,
		ExpiresAt: s.now().Add(s.sessionTTL).UTC(),
	}
	if err := s.staff.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	s.logger.Info().Str("username", username).Msg("login_succeeded")

	return &dtos.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Identity:  dtos.Identity{StaffID: member.ID, Username: member.Username, Role: member.Role},
	}, nil
}

func (s *IdentityServiceImpl) CurrentIdentity(ctx context.Context, token string) (*dtos.Identity, error) {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrUnauthenticated
	}
	session, err := s.staff.GetSession(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !s.now().Before(session.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	member, err := s.staff.GetByID(ctx, session.StaffID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("loading staff: %w", err)
	}
	return &dtos.Identity{StaffID: member.ID, Username: member.Username, Role: member.Role}, nil
}

func (s *IdentityServiceImpl) Logout(ctx context.Context, token string) error {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil
	}
	if err := s.staff.DeleteSession(ctx, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
