package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"csystem-sip/internal/converter"
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/repository"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/internal/service"
	"csystem-sip/internal/session"
	"csystem-sip/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleNotSelectable  = errors.New("role cannot be selected at signup")
	ErrInvalidReferral    = errors.New("referral token is invalid or expired")
	ErrCoreIDExhausted    = errors.New("could not allocate a unique core id")
)

// AddRoleRedirect is where a verified existing account continues
const AddRoleRedirect = "/add-role"

const coreIDAttempts = 5

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	CheckEmail(ctx context.Context, req *dto.CheckEmailRequest) (*dto.CheckEmailResponse, error)
	VerifyExisting(ctx context.Context, req *dto.VerifyExistingRequest) (*dto.VerifyExistingResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, sess session.Session, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, sess session.Session) (*dto.UserResponse, error)
	ListRoles(ctx context.Context) ([]dto.RoleResponse, error)
}

type authUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	roleRepo        repository.RoleRepository
	parentLinkRepo  repository.ParentLinkRepository
	auditService    service.AuditService
	referralService *service.ReferralService
	jwtService      *jwt.JWTService
	redisClient     *redis.Client
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	parentLinkRepo repository.ParentLinkRepository,
	auditService service.AuditService,
	referralService *service.ReferralService,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
) AuthUsecase {
	return &authUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		parentLinkRepo:  parentLinkRepo,
		auditService:    auditService,
		referralService: referralService,
		jwtService:      jwtService,
		redisClient:     redisClient,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	card, ok := entity.RoleByCode(req.RoleCode)
	if !ok {
		return nil, ErrRoleNotFound
	}
	if !card.Selectable {
		return nil, ErrRoleNotSelectable
	}

	// Resolve the referral before anything is written; it is consumed after commit
	var parentID *uuid.UUID
	if req.ReferralToken != "" {
		id, err := u.referralService.Peek(ctx, req.ReferralToken)
		if err != nil {
			if errors.Is(err, service.ErrReferralNotFound) {
				return nil, ErrInvalidReferral
			}
			u.log.Warnf("Failed to read referral token: %+v", err)
			return nil, err
		}
		parentID = &id
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := u.userRepo.ExistsByEmail(ctx, tx, email)
	if err != nil {
		u.log.Warnf("Failed to check email: %+v", err)
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	coreID, err := u.allocateCoreID(ctx, tx, card.Code, time.Now())
	if err != nil {
		return nil, err
	}

	whatsapp := rules.NormalizePhone(req.Whatsapp)
	user := &entity.User{
		RoleID:     card.ID,
		CoreID:     coreID,
		Email:      email,
		Password:   string(hashedPassword),
		Name:       strings.TrimSpace(req.Name),
		Whatsapp:   &whatsapp,
		ProvinceID: rules.Optional(req.ProvinceID),
		CityID:     rules.Optional(req.CityID),
		IsActive:   true,
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isForeignKeyError(err, "role") {
			return nil, ErrRoleNotFound
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	if parentID != nil {
		now := time.Now()
		link := &entity.ParentLink{
			ParentID:    *parentID,
			ChildID:     user.ID,
			Status:      entity.ParentLinkAccepted,
			RespondedAt: &now,
		}
		if err := u.parentLinkRepo.Create(ctx, tx, link); err != nil {
			u.log.Warnf("Failed to link referred child: %+v", err)
			return nil, err
		}
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"core_id": user.CoreID,
		"role":    card.Name,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if parentID != nil {
		if _, err := u.referralService.Redeem(ctx, req.ReferralToken); err != nil {
			u.log.Warnf("Failed to consume referral token after signup: %+v", err)
		}
	}

	u.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"core_id": user.CoreID,
		"role":    card.Name,
	}).Info("User registered")

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		User:  converter.UserToResponse(user),
		Token: tokens,
	}, nil
}

func (u *authUsecase) CheckEmail(ctx context.Context, req *dto.CheckEmailRequest) (*dto.CheckEmailResponse, error) {
	exists, err := u.userRepo.ExistsByEmail(ctx, u.db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		u.log.Warnf("Failed to check email: %+v", err)
		return nil, err
	}
	return &dto.CheckEmailResponse{Exists: exists}, nil
}

func (u *authUsecase) VerifyExisting(ctx context.Context, req *dto.VerifyExistingRequest) (*dto.VerifyExistingResponse, error) {
	user, err := u.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	return &dto.VerifyExistingResponse{
		Redirect: AddRoleRedirect,
		User:     converter.UserToResponse(user),
	}, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, u.db.WithContext(ctx), &user.ID, entity.AuditActionUserLogin, nil); err != nil {
		u.log.Warnf("Failed to audit login: %+v", err)
	}

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, sess session.Session, refreshTokenID string) error {
	keys := []string{accessTokenKey(sess.UserID, sess.TokenID)}
	if refreshTokenID != "" {
		keys = append(keys, refreshTokenKey(sess.UserID, refreshTokenID))
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}

	if err := u.auditService.LogEvent(ctx, u.db.WithContext(ctx), &sess.UserID, entity.AuditActionUserLogout, nil); err != nil {
		u.log.Warnf("Failed to audit logout: %+v", err)
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are single use
	refreshKey := refreshTokenKey(claims.UserID, claims.TokenID)
	deleted, err := u.redisClient.Del(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, sess session.Session) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, sess.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := u.roleRepo.FindSelectable(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find roles: %+v", err)
		return nil, err
	}

	cards := make([]entity.RoleCard, 0, len(roles))
	for _, role := range roles {
		card, ok := entity.RoleByCode(role.Code)
		if !ok {
			card = entity.RoleCard{ID: role.ID, Code: role.Code, Name: role.RoleName, Label: role.RoleName}
		}
		cards = append(cards, card)
	}
	return converter.RoleCardsToResponses(cards), nil
}

func (u *authUsecase) authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	pipe := u.redisClient.TxPipeline()
	pipe.Set(ctx, accessTokenKey(user.ID, accessTokenID), "valid", u.jwtService.GetAccessExpiry())
	pipe.Set(ctx, refreshTokenKey(user.ID, refreshTokenID), "valid", u.jwtService.GetRefreshExpiry())
	if _, err := pipe.Exec(ctx); err != nil {
		u.log.Warnf("Failed to store tokens in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// allocateCoreID draws <roleCode><yy><6 digits> until an unused one is found
func (u *authUsecase) allocateCoreID(ctx context.Context, tx *gorm.DB, roleCode string, now time.Time) (string, error) {
	for i := 0; i < coreIDAttempts; i++ {
		candidate := NewCoreID(roleCode, now, rand.Intn(1000000))
		taken, err := u.userRepo.ExistsByCoreID(ctx, tx, candidate)
		if err != nil {
			u.log.Warnf("Failed to check core id: %+v", err)
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrCoreIDExhausted
}

// NewCoreID formats a core id from its parts
func NewCoreID(roleCode string, issued time.Time, serial int) string {
	return fmt.Sprintf("%s%02d%06d", roleCode, issued.Year()%100, serial)
}

func accessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

func refreshTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID.String(), tokenID)
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
