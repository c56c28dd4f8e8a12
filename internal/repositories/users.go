package repositories

import (
	"context"
	stderrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rohits-web03/insurguide/internal/models"
)

var (
	ErrUserNotFound  = stderrors.New("user not found")
	ErrDuplicateUser = stderrors.New("username or email already registered")
)

// UserRepository is the credential store. It only ever sees password hashes.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error
		if err != nil {
			return errors.Wrap(err, "check existing user")
		}
		if count > 0 {
			return ErrDuplicateUser
		}
		return tx.Create(user).Error
	})
	// the unique indexes still catch a concurrent insert between check and create
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUser
	}
	if err != nil && !errors.Is(err, ErrDuplicateUser) {
		return errors.Wrap(err, "create user")
	}
	return err
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrUserNotFound
	default:
		return nil, errors.Wrapf(err, "find user %q", username)
	}
}
