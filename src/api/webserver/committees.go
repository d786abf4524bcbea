package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/data"
)

type Committees struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

func NewCommittees(db *gorm.DB, sanitizer *bluemonday.Policy) Committees {
	return Committees{db: db, sanitizer: sanitizer}
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad id"})
		return 0, false
	}
	return id, true
}

func (h Committees) Create(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required,max=128"`
		Description string   `json:"description" binding:"required,max=1024"`
		Members     []uint64 `json:"members" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	committee, err := data.CreateCommittee(h.db, data.CreateCommitteeInput{
		Name:        h.sanitizer.Sanitize(req.Name),
		Description: h.sanitizer.Sanitize(req.Description),
		MemberIDs:   req.Members,
		CreatedBy:   currentUser(c).ID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"committee": committee})
}

func (h Committees) List(c *gin.Context) {
	var isActive *bool
	if v := c.Query("isActive"); v != "" {
		b := v == "true"
		isActive = &b
	}
	committees, err := data.ListCommittees(h.db, isActive)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committees": committees, "count": len(committees)})
}

func (h Committees) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	committee, err := data.GetCommittee(h.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committee": committee})
}

func (h Committees) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if req.Name != nil {
		s := h.sanitizer.Sanitize(*req.Name)
		req.Name = &s
	}
	if req.Description != nil {
		s := h.sanitizer.Sanitize(*req.Description)
		req.Description = &s
	}
	committee, err := data.UpdateCommittee(h.db, id, data.UpdateCommitteeInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committee": committee})
}

func (h Committees) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := data.DeleteCommittee(h.db, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "committee deleted"})
}

func (h Committees) AddMember(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		UserID uint64 `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "userId is required"})
		return
	}
	committee, err := data.AddCommitteeMember(h.db, id, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committee": committee})
}

func (h Committees) RemoveMember(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		UserID uint64 `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "userId is required"})
		return
	}
	committee, err := data.RemoveCommitteeMember(h.db, id, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committee": committee})
}

func (h Committees) Members(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	members, err := data.CommitteeMembers(h.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

func (h Committees) Mine(c *gin.Context) {
	committees, err := data.UserCommittees(h.db, currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committees": committees, "count": len(committees)})
}
