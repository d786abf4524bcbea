package data

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/types"
)

// ElectionSummary is the election header attached to a result set.
type ElectionSummary struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type PresidentResult struct {
	CandidateID   uint64  `json:"candidateId"`
	CandidateName string  `json:"candidateName"`
	TotalVotes    int64   `json:"totalVotes"`
	Percentage    float64 `json:"percentage"`
}

type BoardResult struct {
	CandidateID   uint64  `json:"candidateId"`
	CandidateName string  `json:"candidateName"`
	TotalVotes    int64   `json:"totalVotes"`
	YesVotes      int64   `json:"yesVotes"`
	NoVotes       int64   `json:"noVotes"`
	YesPercentage float64 `json:"yesPercentage"`
	NoPercentage  float64 `json:"noPercentage"`
}

type Results struct {
	ElectionType     string            `json:"electionType"`
	Election         ElectionSummary   `json:"election"`
	TotalVotes       int64             `json:"totalVotes"`
	PresidentResults []PresidentResult `json:"results,omitempty"`
	BoardResults     []BoardResult     `json:"boardResults,omitempty"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ElectionResults tallies the ledger for the latest active or closed
// election of the given type. President races rank candidates by total
// votes with percentages of the election grand total; board races count
// yes/no per candidate with percentages of that candidate's own total.
func ElectionResults(db *gorm.DB, electionType string) (*Results, error) {
	if !types.ValidElectionType(electionType) {
		return nil, Validationf("valid electionType (board or president) is required")
	}

	var election types.Election
	err := db.Where("election_type = ? AND status IN ?", electionType,
		[]string{types.ElectionStatusActive, types.ElectionStatusClosed}).
		Order("created_at DESC").
		First(&election).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("no election found for this type")
		}
		return nil, err
	}

	out := &Results{
		ElectionType: electionType,
		Election: ElectionSummary{
			ID:        election.ID,
			Title:     election.Title,
			Status:    election.Status,
			StartDate: election.StartDate,
			EndDate:   election.EndDate,
		},
	}

	type row struct {
		CandidateID   uint64
		CandidateName string
		TotalVotes    int64
		YesVotes      int64
		NoVotes       int64
	}
	var rows []row
	err = db.Table("votes").
		Select(`votes.candidate_id,
			candidates.name AS candidate_name,
			COUNT(*) AS total_votes,
			SUM(CASE WHEN votes.board_choice = 'yes' THEN 1 ELSE 0 END) AS yes_votes,
			SUM(CASE WHEN votes.board_choice = 'no' THEN 1 ELSE 0 END) AS no_votes`).
		Joins("JOIN candidates ON candidates.id = votes.candidate_id").
		Where("votes.election_id = ? AND votes.election_type = ?", election.ID, electionType).
		Group("votes.candidate_id, candidates.name").
		Order("total_votes DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		out.TotalVotes += r.TotalVotes
	}

	switch electionType {
	case types.ElectionTypePresident:
		out.PresidentResults = make([]PresidentResult, 0, len(rows))
		for _, r := range rows {
			pct := 0.0
			if out.TotalVotes > 0 {
				pct = round2(float64(r.TotalVotes) / float64(out.TotalVotes) * 100)
			}
			out.PresidentResults = append(out.PresidentResults, PresidentResult{
				CandidateID:   r.CandidateID,
				CandidateName: r.CandidateName,
				TotalVotes:    r.TotalVotes,
				Percentage:    pct,
			})
		}
	case types.ElectionTypeBoard:
		out.BoardResults = make([]BoardResult, 0, len(rows))
		for _, r := range rows {
			yesPct, noPct := 0.0, 0.0
			if r.TotalVotes > 0 {
				yesPct = round2(float64(r.YesVotes) / float64(r.TotalVotes) * 100)
				noPct = round2(float64(r.NoVotes) / float64(r.TotalVotes) * 100)
			}
			out.BoardResults = append(out.BoardResults, BoardResult{
				CandidateID:   r.CandidateID,
				CandidateName: r.CandidateName,
				TotalVotes:    r.TotalVotes,
				YesVotes:      r.YesVotes,
				NoVotes:       r.NoVotes,
				YesPercentage: yesPct,
				NoPercentage:  noPct,
			})
		}
	}
	return out, nil
}
