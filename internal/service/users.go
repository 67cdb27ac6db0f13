package service

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ColorWinApi/cmd/db"
	"ColorWinApi/internal/middleware"
	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
)

const AccessExpiration = 10 // hours

type Token struct {
	AccessToken string `json:"access_token"`
}

type signUpInput struct {
	Nickname string `json:"nickname" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=64"`
	AvatarID int    `json:"avatar_id" validate:"min=0,max=100"`
}

func (i *signUpInput) Validate() error {
	return validate.Struct(i)
}

type loginInput struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

func SignUp(c *gin.Context) {
	var input signUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	exists, err := models.CheckIfUserExistsByNickname(input.Nickname)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if exists {
		c.JSON(409, gin.H{"error": "User with this nickname already exists"})
		return
	}

	hashed, err := middleware.HashPassword(input.Password)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	user := models.User{
		Nickname:  input.Nickname,
		AvatarID:  input.AvatarID,
		Password:  hashed,
		CreatedAt: time.Now(),
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return logger.WrapError(err, "")
		}

		// Every account starts with an empty settlement-currency wallet so
		// later credits and debits always have a row to hit.
		wallet := models.WalletBalance{
			UserID:   user.ID,
			Currency: SettlementCurrency,
			Balance:  0,
		}
		if err := tx.Create(&wallet).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	issueToken(c, user.ID)
}

func AuthLogin(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	user, err := models.GetUserWithPassword(input.Nickname)
	if err != nil {
		logger.Warn("Login failed for %q: %v", input.Nickname, err)
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	if !middleware.ComparePasswords(user.Password, input.Password) {
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	issueToken(c, user.ID)
}

func issueToken(c *gin.Context, userID int64) {
	expiresAt := time.Now().Unix() + int64(AccessExpiration*60*60)

	access, err := middleware.TokenNew(userID, expiresAt, middleware.TokenAccess)
	if err != nil {
		logger.Error("%v", err)
		c.AbortWithStatus(500)
		return
	}

	c.JSON(200, Token{AccessToken: access})
}

func GetUser(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var user models.User
	err = db.DB.First(&user, userID).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, user)
}

func GetUserWallet(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	balances, err := models.GetUserWalletBalances(nil, userID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"balances": balances})
}
