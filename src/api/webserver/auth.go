package webserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/data"
	"github.com/openassembly/election-api/src/api/types"
)

type Auth struct {
	db         *gorm.DB
	rdb        *redis.Client
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuth(db *gorm.DB, rdb *redis.Client, secret []byte, accessTTL, refreshTTL time.Duration) Auth {
	return Auth{db: db, rdb: rdb, secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Signup registers a new account. Accounts start unverified and cannot log
// in until an admin verifies them.
func (a Auth) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8,max=72"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	roleKey := req.Role
	if roleKey == "" {
		roleKey = data.RoleMember
	}
	role, err := data.RoleByKey(a.db, roleKey)
	if err != nil {
		writeError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(c, err)
		return
	}

	user := types.User{
		Email:      req.Email,
		Password:   string(hash),
		RoleID:     role.ID,
		IsVerified: false,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"err": "email already exists"})
			return
		}
		writeError(c, err)
		return
	}

	log.Printf("signup: %s (role %s)", user.Email, roleKey)
	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered successfully, awaiting admin verification",
		"user":    user,
	})
}

func (a Auth) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var user types.User
	if err := a.db.First(&user, "email = ?", req.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"err": "account not verified, please wait for admin verification"})
		return
	}

	access, refresh, err := a.issueTokenPair(c, &user)
	if err != nil {
		writeError(c, err)
		return
	}

	log.Printf("login: %s", user.Email)
	c.JSON(http.StatusOK, gin.H{"token": access, "refreshToken": refresh})
}

func (a Auth) issueTokenPair(c *gin.Context, user *types.User) (string, string, error) {
	access, err := issueAccessToken(user, a.secret, a.accessTTL)
	if err != nil {
		return "", "", err
	}
	jti := uuid.NewString()
	refresh, err := issueRefreshToken(user, jti, a.secret, a.refreshTTL)
	if err != nil {
		return "", "", err
	}
	if err := data.SetRefreshToken(c, a.rdb, jti, user.ID, a.refreshTTL); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Refresh rotates the token pair. The presented refresh token must still be
// allowlisted; its jti is revoked on use.
func (a Auth) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	claims, err := parseToken(req.RefreshToken, a.secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid refresh token"})
		return
	}
	jti, _ := claims["jti"].(string)
	sub, _ := claims["sub"].(float64)
	userID, err := data.RefreshTokenUser(c, a.rdb, jti)
	if err != nil || userID != uint64(sub) {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "refresh token revoked or expired"})
		return
	}

	var user types.User
	if err := a.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid refresh token - user not found"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"err": "user account is not verified"})
		return
	}

	_ = data.DelRefreshToken(c, a.rdb, jti)
	access, refresh, err := a.issueTokenPair(c, &user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access, "refreshToken": refresh})
}

// Logout revokes the presented refresh token. Access tokens simply expire.
func (a Auth) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		if claims, err := parseToken(req.RefreshToken, a.secret); err == nil {
			if jti, ok := claims["jti"].(string); ok {
				_ = data.DelRefreshToken(c, a.rdb, jti)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a Auth) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// Permissions lists the caller's effective permission set, grouped by
// category for dashboard consumption.
func (a Auth) Permissions(c *gin.Context) {
	user := currentUser(c)

	var role types.Role
	if err := a.db.Preload("Permissions").First(&role, user.RoleID).Error; err != nil {
		writeError(c, err)
		return
	}

	keys := make([]string, 0, len(role.Permissions))
	byCategory := map[string][]types.Permission{}
	for _, p := range role.Permissions {
		keys = append(keys, p.Key)
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"isVerified": user.IsVerified,
			"role":       gin.H{"key": role.Key, "name": role.Name, "description": role.Description},
		},
		"permissions":           role.Permissions,
		"permissionsByCategory": byCategory,
		"permissionKeys":        keys,
	})
}

// VerifyUser flips the verification flag on an account.
func (a Auth) VerifyUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad user id"})
		return
	}
	var req struct {
		IsVerified *bool `json:"isVerified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "isVerified must be a boolean value"})
		return
	}

	var user types.User
	if err := a.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}
	if err := a.db.Model(&user).Update("is_verified", *req.IsVerified).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a Auth) Unverified(c *gin.Context) {
	var users []types.User
	if err := a.db.Where("is_verified = ?", false).Find(&users).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
