package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/data"
)

type Candidates struct{ db *gorm.DB }

func NewCandidates(db *gorm.DB) Candidates { return Candidates{db: db} }

func (h Candidates) Create(c *gin.Context) {
	var req struct {
		UserID        uint64  `json:"userId" binding:"required"`
		ElectionID    uint64  `json:"electionId" binding:"required"`
		CandidateType string  `json:"candidateType" binding:"required"`
		Name          string  `json:"name" binding:"required,max=255"`
		CommitteeID   *uint64 `json:"committeeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	candidate, err := data.CreateCandidate(h.db, data.CreateCandidateInput{
		UserID:        req.UserID,
		ElectionID:    req.ElectionID,
		CandidateType: req.CandidateType,
		Name:          req.Name,
		CommitteeID:   req.CommitteeID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"candidate": candidate})
}

func (h Candidates) List(c *gin.Context) {
	var electionID uint64
	if v := c.Query("electionId"); v != "" {
		electionID, _ = strconv.ParseUint(v, 10, 64)
	}
	candidates, err := data.ListCandidates(h.db, electionID, c.Query("candidateType"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "count": len(candidates)})
}

func (h Candidates) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	candidate, err := data.GetCandidate(h.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidate": candidate})
}

func (h Candidates) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name   *string `json:"name"`
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	candidate, err := data.UpdateCandidate(h.db, id, data.UpdateCandidateInput{
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidate": candidate})
}

func (h Candidates) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := data.DeleteCandidate(h.db, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "candidate deleted"})
}
