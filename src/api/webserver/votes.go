package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/data"
)

type Votes struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewVotes(db *gorm.DB, rdb *redis.Client) Votes { return Votes{db: db, rdb: rdb} }

// Cast writes one ballot. The caller picks the election implicitly: the
// ledger resolves the active election of the requested type whose voting
// window contains now.
func (v Votes) Cast(c *gin.Context) {
	var req struct {
		ElectionType string  `json:"electionType" binding:"required,oneof=board president"`
		CandidateID  uint64  `json:"candidateId" binding:"required"`
		BoardChoice  *string `json:"boardChoice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	vote, err := data.CastVote(v.db, data.CastVoteInput{
		MemberID:     currentUser(c).ID,
		ElectionType: req.ElectionType,
		CandidateID:  req.CandidateID,
		BoardChoice:  req.BoardChoice,
	}, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	data.PublishVoteEvent(c, v.rdb, map[string]interface{}{
		"vote":     vote.ID,
		"election": vote.ElectionID,
		"type":     vote.ElectionType,
	})

	c.JSON(http.StatusCreated, gin.H{"message": "vote cast successfully", "vote": vote})
}

func (v Votes) Results(c *gin.Context) {
	results, err := data.ElectionResults(v.db, c.Param("electionType"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// List returns every recorded ballot, filterable by type and candidate.
func (v Votes) List(c *gin.Context) {
	var candidateID uint64
	if q := c.Query("candidateId"); q != "" {
		candidateID, _ = strconv.ParseUint(q, 10, 64)
	}
	votes, err := data.ListVotes(v.db, data.VoteFilter{
		ElectionType: c.Query("electionType"),
		CandidateID:  candidateID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes, "count": len(votes)})
}

func (v Votes) Mine(c *gin.Context) {
	votes, err := data.ListVotes(v.db, data.VoteFilter{
		MemberID:     currentUser(c).ID,
		ElectionType: c.Query("electionType"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes, "count": len(votes)})
}
