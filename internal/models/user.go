package models

import (
	"ColorWinApi/cmd/db"
	"ColorWinApi/pkg/logger"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

type User struct {
	ID        int64  `gorm:"primaryKey,autoIncrement"`
	Nickname  string `gorm:"unique"`
	AvatarID  int
	CreatedAt time.Time
	Password  string `json:"-"`
}

func (u *User) Validate() error {
	if validate == nil {
		validate = validator.New()
	}
	return validate.Struct(u)
}

func CheckIfUserExistsByID(userID int64) (bool, error) {
	var exists bool
	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("id = ?", userID).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func GetUserWithPassword(nickname string) (*User, error) {
	var user User

	err := db.DB.
		Where("nickname = ?", nickname).
		First(&user).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &user, nil
}

func CheckIfUserExistsByNickname(nn string) (bool, error) {
	var exists bool

	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("nickname = ?", nn).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}
