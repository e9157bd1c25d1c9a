package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an employee account. Admins are only created through EnsureAdmin or
// promoted with UpdateUserRole.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, in, models.RoleEmployee)
}

func (s *UserService) createUser(ctx context.Context, in RegisterInput, role string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.Name) == "" || in.Password == "" {
		return nil, fail("register user", invalid("name, email and password are required"), nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fail("register user", err, logrus.Fields{"email": email})
	}
	user := models.User{
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		Password:   string(hashed),
		Role:       role,
		Department: in.Department,
	}

	err = batch(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.Wrapf(ErrEmailTaken, "email %s", email)
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, fail("register user", err, logrus.Fields{"email": email})
	}

	utils.InfoLogger.Infof("New user registered: %s (role=%s)", user.Email, user.Role)
	return &user, nil
}

// Login checks the credentials and returns the user with a fresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fail("login", ErrInvalidCredentials, logrus.Fields{"email": email})
		}
		return nil, "", fail("login", err, logrus.Fields{"email": email})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", fail("login", ErrInvalidCredentials, logrus.Fields{"email": email})
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fail("login", err, logrus.Fields{"user_id": user.ID})
	}
	return &user, token, nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists yet.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return fail("ensure admin", err, nil)
	}
	if count > 0 {
		return nil
	}
	_, err := s.createUser(ctx, RegisterInput{Name: "Administrator", Email: email, Password: password}, models.RoleAdmin)
	return err
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fail("get user", notFound(err, ErrUserNotFound, id), logrus.Fields{"user_id": id})
	}
	return &user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name asc").Find(&users).Error; err != nil {
		return nil, fail("get users", err, nil)
	}
	return users, nil
}

func (s *UserService) UpdateUserRole(ctx context.Context, id, role string) error {
	if !utils.IsValidRole(role) {
		return fail("update user role", invalid("unknown role %q", role), logrus.Fields{"user_id": id})
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return fail("update user role", res.Error, logrus.Fields{"user_id": id})
	}
	if res.RowsAffected == 0 {
		return fail("update user role", errors.Wrapf(ErrUserNotFound, "id %s", id), logrus.Fields{"user_id": id})
	}
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return fail("delete user", res.Error, logrus.Fields{"user_id": id})
	}
	if res.RowsAffected == 0 {
		return fail("delete user", errors.Wrapf(ErrUserNotFound, "id %s", id), logrus.Fields{"user_id": id})
	}
	return nil
}
