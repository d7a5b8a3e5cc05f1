package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ldaehi0205/go-board-backend/internal/domain"
	"github.com/ldaehi0205/go-board-backend/internal/observability"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateLoginName = errors.New("login name already taken")
)

type UserRepository interface {
	Create(u *domain.User) error
	FindByID(id uint) (*domain.User, error)
	FindByLoginName(loginName string) (*domain.User, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(u *domain.User) error {
	if err := r.db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "user", "create", "duplicate")
			return ErrDuplicateLoginName
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create", "success")
	return nil
}

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByLoginName(loginName string) (*domain.User, error) {
	var u domain.User
	if err := r.db.Where("login_name = ?", loginName).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_login_name", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_login_name", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_login_name", "success")
	return &u, nil
}
