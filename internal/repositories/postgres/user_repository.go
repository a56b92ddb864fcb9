package postgres

import (
	"errors"

	"classroom-service/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(userID uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, userID).Error
	return &u, err
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var u models.User
	err := r.db.Select("id").Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) Delete(userID uint) error {
	return r.db.Delete(&models.User{}, userID).Error
}

func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at").Find(&users).Error
	return users, err
}

/** ---------------- pending registrations ---------------- */

// UpsertPending replaces any previous pending registration for the email.
func (r *UserRepository) UpsertPending(p *models.PendingRegistration) error {
	err := r.db.Unscoped().Where("email = ?", p.Email).Delete(&models.PendingRegistration{}).Error
	if err != nil {
		return err
	}
	return r.db.Create(p).Error
}

func (r *UserRepository) GetPendingByEmail(email string) (*models.PendingRegistration, error) {
	var p models.PendingRegistration
	err := r.db.Where("email = ?", email).First(&p).Error
	return &p, err
}

func (r *UserRepository) UpdatePending(p *models.PendingRegistration) error {
	return r.db.Save(p).Error
}

func (r *UserRepository) DeletePending(pendingID uint) error {
	return r.db.Unscoped().Delete(&models.PendingRegistration{}, pendingID).Error
}
