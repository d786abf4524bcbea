package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/data"
)

type Elections struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

func NewElections(db *gorm.DB, sanitizer *bluemonday.Policy) Elections {
	return Elections{db: db, sanitizer: sanitizer}
}

func (h Elections) Create(c *gin.Context) {
	var req struct {
		ElectionType string    `json:"electionType" binding:"required"`
		Title        string    `json:"title" binding:"required,max=255"`
		Description  string    `json:"description" binding:"max=1024"`
		StartDate    time.Time `json:"startDate" binding:"required"`
		EndDate      time.Time `json:"endDate" binding:"required"`
		CommitteeID  *uint64   `json:"committeeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	election, err := data.CreateElection(h.db, data.CreateElectionInput{
		ElectionType: req.ElectionType,
		Title:        h.sanitizer.Sanitize(req.Title),
		Description:  h.sanitizer.Sanitize(req.Description),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		CommitteeID:  req.CommitteeID,
		CreatedBy:    currentUser(c).ID,
	}, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"election": election})
}

func (h Elections) List(c *gin.Context) {
	elections, err := data.ListElections(h.db, c.Query("status"), c.Query("electionType"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"elections": elections, "count": len(elections)})
}

func (h Elections) Active(c *gin.Context) {
	elections, err := data.ActiveElections(h.db, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"elections": elections, "count": len(elections)})
}

func (h Elections) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	election, err := data.GetElection(h.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"election": election})
}

func (h Elections) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		StartDate   *time.Time `json:"startDate"`
		EndDate     *time.Time `json:"endDate"`
		Status      *string    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if req.Title != nil {
		s := h.sanitizer.Sanitize(*req.Title)
		req.Title = &s
	}
	if req.Description != nil {
		s := h.sanitizer.Sanitize(*req.Description)
		req.Description = &s
	}
	election, err := data.UpdateElection(h.db, id, data.UpdateElectionInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"election": election})
}

func (h Elections) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := data.DeleteElection(h.db, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "election deleted"})
}

func (h Elections) Start(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	election, err := data.StartElection(h.db, id, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"election": election})
}

func (h Elections) Close(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	election, err := data.CloseElection(h.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"election": election})
}
