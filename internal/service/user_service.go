package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// UserService 用户管理服务接口（handler 层限定 admin 调用写操作）
type UserService interface {
	ListUsers(ctx context.Context) []domain.User
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, patch map[string]any) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	repos  *repository.Repos
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repos *repository.Repos, logger *zap.Logger) UserService {
	return &userService{repos: repos, logger: logger}
}

func (s *userService) ListUsers(ctx context.Context) []domain.User {
	return s.repos.Users.Snapshot(ctx)
}

func (s *userService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repos.Users.Get(ctx, userID)
}

func (s *userService) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.Name == "" {
		return nil, &ValidationError{msg: "name is required"}
	}
	switch user.Role {
	case "", domain.RoleAdmin, domain.RoleManager, domain.RoleTechnician, domain.RoleViewer:
	default:
		return nil, &ValidationError{msg: fmt.Sprintf("unknown role %q", user.Role)}
	}
	created, err := s.repos.Users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.String("user_id", created.UserID),
		zap.String("role", created.Role))
	return created, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, patch map[string]any) (*domain.User, error) {
	return s.repos.Users.Update(ctx, userID, patch)
}

func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.repos.Users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}
