package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// ==================== UserService 用户服务 ====================

// UserService 账号注册、登录与 token 刷新
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ==================== 认证相关 ====================

// Register 注册普通用户并直接签发 token
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	user, err := s.createUser(ctx, req.Username, req.Password, req.Email, req.FirstName, req.LastName, false)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// CreateAdmin 创建管理员账号 (命令行使用)
func (s *UserService) CreateAdmin(ctx context.Context, username, password, email string) (*model.User, error) {
	return s.createUser(ctx, username, password, email, "", "", true)
}

func (s *UserService) createUser(ctx context.Context, username, password, email, firstName, lastName string, staff bool) (*model.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fieldSentinel("username", ErrUsernameExists)
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fieldSentinel("email", ErrEmailExists)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  username,
		Password:  string(hashed),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsStaff:   staff,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册撞唯一索引
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fieldSentinel("username", ErrUsernameExists)
		}
		return nil, err
	}
	return user, nil
}

// Login 用户登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)
	return resp, nil
}

// RefreshToken 用 refresh token 换新的 token 对
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || claims.Subject != middleware.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	// 确保用户仍然有效，角色以库中为准
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserDisabled
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role())
	if err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(middleware.GetJWTConfig().AccessTokenTTL),
	}, nil
}

// GetProfile 当前用户信息
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return toUserInfo(user), nil
}

func (s *UserService) issue(ctx context.Context, user *model.User) (*dto.LoginResponse, error) {
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role())
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(middleware.GetJWTConfig().AccessTokenTTL),
		User:         toUserInfo(user),
	}, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role(),
	}
}
