package middleware

import (
	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenAccess  = "TokenAccess"
	TokenRefresh = "TokenRefresh"

	ContextUserIDKey = "user_id"
)

var jwtKey = "dasdasdasdasdas"

func init() {
	if key, ok := os.LookupEnv("JWT_KEY"); ok {
		jwtKey = key
	}
}

type accessClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenNew issues a signed token for the user expiring at expiresAt (unix seconds).
func TokenNew(userID int64, expiresAt int64, tokenType string) (string, error) {
	claims := accessClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtKey))
	if err != nil {
		return "", logger.WrapError(err, "")
	}

	return signed, nil
}

// TokenCheck parses and verifies a token, returning the embedded user id
// and token type.
func TokenCheck(tokenString string) (int64, string, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(jwtKey), nil
	})
	if err != nil {
		return 0, "", err
	}
	if !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	return claims.UserID, claims.TokenType, nil
}

// GetTokenFromAuthorizationHeader extracts the bearer token. Websocket
// requests cannot set headers from the browser, so those carry the token
// in the "token" query parameter instead.
func GetTokenFromAuthorizationHeader(c *gin.Context) (string, error) {
	if c.IsWebsocket() {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("malformed Authorization header")
	}

	return parts[1], nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := GetTokenFromAuthorizationHeader(c)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(400)
			return
		}

		userID, tokenType, err := TokenCheck(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				logger.Error("%v", err)
				c.AbortWithStatus(401)
				return
			}
			logger.Error("%v", err)
			c.AbortWithStatus(400)
			return
		}

		if tokenType != TokenAccess {
			c.AbortWithStatus(401)
			return
		}

		// check if user in database
		exists, err := models.CheckIfUserExistsByID(userID)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		if exists {
			c.Set(ContextUserIDKey, userID)
			c.Next()
			return
		} else {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}
	}
}

func GetUserIDFromGinContext(c *gin.Context) (int64, error) {
	userIDAny, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, errors.New("unable to get user id from gin context")
	}

	userID, ok := userIDAny.(int64)
	if !ok {
		return 0, errors.New("user id in gin context has unexpected type")
	}

	return userID, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", logger.WrapError(err, "")
	}
	return string(hash), nil
}

func ComparePasswords(hashed string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
