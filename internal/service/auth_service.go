package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/pkg/jwt"
	"github.com/qs3c/brand_go_server/internal/pkg/queue"
	"github.com/qs3c/brand_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrCompanyExists      = errors.New("公司名称已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrBrandInactive      = errors.New("品牌已停用")
	ErrUserNotFound       = errors.New("用户不存在")
)

const (
	subdomainBaseLen   = 20
	subdomainSuffixLen = 6
	subdomainAttempts  = 5
	subdomainAlphabet  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	brandRepo *repository.BrandRepository
	jobs      JobQueue
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	brandRepo *repository.BrandRepository,
	jobs JobQueue,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		userRepo:  userRepo,
		brandRepo: brandRepo,
		jobs:      jobs,
		cfg:       cfg,
		log:       log,
	}
}

// Register 品牌方注册，同时创建品牌和登录账号
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	companyName := strings.TrimSpace(req.CompanyName)

	// 检查邮箱是否存在
	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.brandRepo.ExistsByEmail(email)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, ErrEmailExists
	}

	// 检查公司名是否存在
	exists, err = s.brandRepo.ExistsByCompanyName(companyName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCompanyExists
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	subdomain, err := s.uniqueSubdomain(companyName)
	if err != nil {
		return nil, err
	}

	brand := &model.Brand{
		CompanyName:    companyName,
		Email:          email,
		PasswordHash:   string(hashedPassword),
		AppName:        req.AppName,
		LogoURL:        req.LogoURL,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		Typography:     req.Typography,
		Subdomain:      subdomain,
		IsActive:       true,
	}
	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	if err := s.brandRepo.CreateWithUser(brand, user); err != nil {
		// 并发注册时由唯一索引拦截
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	user.Brand = brand

	s.enqueueWelcome(ctx, brand)

	return s.issue(user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Brand != nil && !user.Brand.IsActive {
		return nil, ErrBrandInactive
	}

	return s.issue(user)
}

// GetProfile 获取当前登录账号
func (s *AuthService) GetProfile(userID string) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *AuthService) issue(user *model.User) (*dto.AuthResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.BrandID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: token,
		User:        toUserInfo(user),
	}, nil
}

func (s *AuthService) enqueueWelcome(ctx context.Context, brand *model.Brand) {
	if s.jobs == nil {
		return
	}
	err := s.jobs.Push(ctx, &queue.NotificationJob{
		Kind:        queue.KindWelcome,
		BrandID:     brand.ID,
		Email:       brand.Email,
		CompanyName: brand.CompanyName,
	})
	if err != nil {
		s.log.Warn("enqueue welcome email failed", zap.String("brand_id", brand.ID), zap.Error(err))
	}
}

// uniqueSubdomain 撞上已有子域名时重新生成后缀
func (s *AuthService) uniqueSubdomain(companyName string) (string, error) {
	for i := 0; i < subdomainAttempts; i++ {
		subdomain, err := generateSubdomain(companyName)
		if err != nil {
			return "", err
		}
		exists, err := s.brandRepo.ExistsBySubdomain(subdomain)
		if err != nil {
			return "", err
		}
		if !exists {
			return subdomain, nil
		}
	}
	return "", errors.New("failed to allocate subdomain")
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Brand:     user.Brand,
	}
}

// generateSubdomain 公司名中的小写字母数字（最多 20 位）加 6 位随机后缀
func generateSubdomain(companyName string) (string, error) {
	var base strings.Builder
	for _, r := range strings.ToLower(companyName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			base.WriteRune(r)
			if base.Len() == subdomainBaseLen {
				break
			}
		}
	}

	suffix, err := randomString(subdomainSuffixLen)
	if err != nil {
		return "", err
	}
	return base.String() + suffix, nil
}

func randomString(length int) (string, error) {
	max := big.NewInt(int64(len(subdomainAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = subdomainAlphabet[n.Int64()]
	}
	return string(out), nil
}
