package webserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/data"
	"github.com/openassembly/election-api/src/api/types"
)

type Users struct{ db *gorm.DB }

func NewUsers(db *gorm.DB) Users { return Users{db: db} }

func (u Users) Create(c *gin.Context) {
	var req struct {
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required,min=8,max=72"`
		Role       string `json:"role"`
		IsVerified bool   `json:"isVerified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	roleKey := req.Role
	if roleKey == "" {
		roleKey = data.RoleMember
	}
	role, err := data.RoleByKey(u.db, roleKey)
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
		IsVerified: req.IsVerified,
	}
	if err := u.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"err": "email already exists"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (u Users) List(c *gin.Context) {
	var users []types.User
	if err := u.db.Preload("Role").Find(&users).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (u Users) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad user id"})
		return
	}
	var user types.User
	if err := u.db.Preload("Role").First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (u Users) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad user id"})
		return
	}
	var req struct {
		Email      *string `json:"email"`
		Password   *string `json:"password"`
		Role       *string `json:"role"`
		IsVerified *bool   `json:"isVerified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var user types.User
	if err := u.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}

	update := map[string]interface{}{}
	if req.Email != nil {
		update["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(c, err)
			return
		}
		update["password"] = string(hash)
	}
	if req.Role != nil {
		role, err := data.RoleByKey(u.db, *req.Role)
		if err != nil {
			writeError(c, err)
			return
		}
		update["role_id"] = role.ID
	}
	if req.IsVerified != nil {
		update["is_verified"] = *req.IsVerified
	}

	if err := u.db.Model(&user).Updates(update).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"err": "email already exists"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (u Users) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad user id"})
		return
	}
	res := u.db.Delete(&types.User{}, id)
	if res.Error != nil {
		writeError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
