package models

import (
	"context"
	"errors"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/buildsmart/erp_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;not null" json:"role"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PrepareGive strips the credential hash before the record leaves the store
// layer. The json:"-" tag already hides it; clearing it as well keeps the
// hash out of logs and error payloads.
func (result *User) PrepareGive() {
	result.Password = ""
}

type LoginInfo struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login authenticates by email and secret and issues a self-contained signed
// session token carrying {id, email, role}. The two failure reasons are kept
// distinct for the caller; the HTTP layer maps both to 401.
func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	db := config.GetDB()

	var user User
	err := db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorUserNotFound
		}
		return nil, err
	}

	err = utils.ComparePassword(user.Password, password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, utils.ErrorInvalidPassword
		}
		return nil, err
	}

	token, err := utils.JwtGenerate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := CreateAuditLog(db.WithContext(ctx), user.Name, "Logged in"); err != nil {
		return nil, err
	}

	user.PrepareGive()
	return &LoginInfo{Token: token, User: &user}, nil
}

func GetAllUsers(ctx context.Context) ([]*User, error) {
	db := config.GetDB()
	var results []*User

	if err := db.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}

	for _, u := range results {
		u.PrepareGive()
	}

	return results, nil
}
