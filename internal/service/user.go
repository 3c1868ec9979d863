package service

import (
	"ShareVault/internal/repo"
	"ShareVault/model"
	"ShareVault/utils"
	"errors"
)

// Principal identifies the caller of owner-gated operations.
type Principal struct {
	ID      uint64
	IsAdmin bool
}

// CreateUser hashes the password and creates a user.
func CreateUser(user *model.User) error {
	user.Password = utils.GetPwd(user.Password)
	return repo.Db.Create(user).Error
}

// GetUserByName returns a user by username.
func GetUserByName(username string) (*model.User, error) {
	var user model.User
	if err := repo.Db.Where("user_name = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IsEmailExist checks whether an email is already registered.
func IsEmailExist(email string) bool {
	var user model.User
	return repo.Db.Where("email = ?", email).First(&user).Error == nil
}

// CheckPassword verifies a user's password and returns the user.
func CheckPassword(username, password string) (*model.User, error) {
	user, err := GetUserByName(username)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPwd(password, user.Password) {
		return nil, errors.New("password error")
	}
	return user, nil
}

// PrincipalFor builds the authorization view of a user.
func PrincipalFor(user *model.User) Principal {
	return Principal{ID: user.ID, IsAdmin: user.IsAdmin}
}

// GetUserById returns a user by ID.
func GetUserById(userID uint64) (*model.User, error) {
	var user model.User
	if err := repo.Db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
