package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openassembly/election-api/src/api/types"
)

type CastVoteInput struct {
	MemberID     uint64
	ElectionType string
	CandidateID  uint64
	BoardChoice  *string
}

// lockForUpdate takes row locks where the dialect has them. sqlite (used by
// the tests) serializes writers on its own and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CastVote is the invariant-checking write of the ledger. The whole
// check-then-insert sequence runs in one transaction under locking reads so
// a concurrent cast cannot race past the duplicate checks; the unique index
// on (election, member, candidate) remains the final backstop.
func CastVote(db *gorm.DB, in CastVoteInput, now time.Time) (*types.Vote, error) {
	if in.ElectionType == "" || in.CandidateID == 0 {
		return nil, Validationf("electionType and candidateId are required")
	}
	if !types.ValidElectionType(in.ElectionType) {
		return nil, Validationf("electionType must be 'board' or 'president'")
	}

	var vote types.Vote
	err := db.Transaction(func(tx *gorm.DB) error {
		activeElections := func() *gorm.DB {
			return lockForUpdate(tx).
				Where("election_type = ? AND status = ? AND start_date <= ? AND end_date >= ?",
					in.ElectionType, types.ElectionStatusActive, now, now).
				Order("created_at DESC")
		}

		// Resolve the election through the candidate, so parallel board
		// elections across committees each accept their own ballots. When the
		// candidate is not tied to an active election, fall back to the latest
		// active one; the candidate check below then reports the mismatch.
		var election types.Election
		err := activeElections().
			Where("id IN (?)", tx.Model(&types.Candidate{}).Select("election_id").Where("id = ?", in.CandidateID)).
			First(&election).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			err = activeElections().First(&election).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return Validationf("no active election found for this type or voting period has ended")
				}
				return err
			}
		}

		var candidate types.Candidate
		err = tx.Where("id = ? AND election_id = ? AND candidate_type = ? AND status = ?",
			in.CandidateID, election.ID, in.ElectionType, types.CandidateStatusActive).
			First(&candidate).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("candidate not found, not active, or does not belong to this election")
			}
			return err
		}

		var voter types.User
		if err := tx.First(&voter, in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("voter not found")
			}
			return err
		}
		if !voter.IsVerified {
			return Authorizationf("only verified users can vote")
		}

		switch in.ElectionType {
		case types.ElectionTypePresident:
			if in.BoardChoice != nil {
				return Validationf("boardChoice is not allowed for president elections")
			}
			var cast int64
			err := lockForUpdate(tx.Model(&types.Vote{})).
				Where("election_id = ? AND member_id = ?", election.ID, in.MemberID).
				Count(&cast).Error
			if err != nil {
				return err
			}
			if cast > 0 {
				return Conflictf("you have already voted in this president election")
			}

		case types.ElectionTypeBoard:
			if in.BoardChoice == nil || !types.ValidBoardChoice(*in.BoardChoice) {
				return Validationf("boardChoice is required and must be 'yes' or 'no' for board election")
			}
			if election.CommitteeID == nil {
				return Validationf("board election must be linked to a committee")
			}
			var committee types.Committee
			if err := tx.First(&committee, *election.CommitteeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return Validationf("committee not found or inactive")
				}
				return err
			}
			if !committee.IsActive {
				return Validationf("committee not found or inactive")
			}
			member, err := IsCommitteeMember(tx, committee.ID, in.MemberID)
			if err != nil {
				return err
			}
			if !member {
				return Authorizationf("only committee members can vote in board elections")
			}
			if candidate.CommitteeID == nil || *candidate.CommitteeID != committee.ID {
				return Validationf("candidate must belong to the same committee as the election")
			}
			var cast int64
			err = lockForUpdate(tx.Model(&types.Vote{})).
				Where("election_id = ? AND member_id = ? AND candidate_id = ?",
					election.ID, in.MemberID, candidate.ID).
				Count(&cast).Error
			if err != nil {
				return err
			}
			if cast > 0 {
				return Conflictf("you have already voted for this board candidate")
			}
		}

		var choice *string
		if in.ElectionType == types.ElectionTypeBoard {
			c := *in.BoardChoice
			choice = &c
		}
		vote = types.Vote{
			ElectionID:   election.ID,
			MemberID:     in.MemberID,
			CandidateID:  candidate.ID,
			ElectionType: election.ElectionType,
			BoardChoice:  choice,
		}
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflictf("duplicate vote detected - you have already voted")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

type VoteFilter struct {
	ElectionType string
	CandidateID  uint64
	MemberID     uint64
}

// ListVotes returns ballots matching the filter, newest first.
func ListVotes(db *gorm.DB, f VoteFilter) ([]types.Vote, error) {
	q := db.Order("created_at DESC")
	if f.ElectionType != "" {
		q = q.Where("election_type = ?", f.ElectionType)
	}
	if f.CandidateID != 0 {
		q = q.Where("candidate_id = ?", f.CandidateID)
	}
	if f.MemberID != 0 {
		q = q.Where("member_id = ?", f.MemberID)
	}
	var votes []types.Vote
	if err := q.Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}
