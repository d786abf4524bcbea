package data

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/types"
)

type CreateCandidateInput struct {
	UserID        uint64
	ElectionID    uint64
	CandidateType string
	Name          string
	CommitteeID   *uint64
}

// CreateCandidate declares a user as a candidate in one election. All
// cross-entity checks run at commit time inside the transaction: the
// election's type must match, and board candidacies must reference the
// election's own committee with the user already a member of it.
func CreateCandidate(db *gorm.DB, in CreateCandidateInput) (*types.Candidate, error) {
	if in.UserID == 0 || in.ElectionID == 0 || in.CandidateType == "" || in.Name == "" {
		return nil, Validationf("userId, electionId, candidateType and name are required")
	}
	if !types.ValidElectionType(in.CandidateType) {
		return nil, Validationf("candidateType must be 'board' or 'president'")
	}
	if in.CandidateType == types.ElectionTypeBoard && in.CommitteeID == nil {
		return nil, Validationf("committeeId is required for board candidates")
	}
	if in.CandidateType == types.ElectionTypePresident && in.CommitteeID != nil {
		return nil, Validationf("committeeId is not allowed for president candidates")
	}

	var candidate types.Candidate
	err := db.Transaction(func(tx *gorm.DB) error {
		candidate = types.Candidate{
			UserID:        in.UserID,
			ElectionID:    in.ElectionID,
			CandidateType: in.CandidateType,
			Name:          in.Name,
			Status:        types.CandidateStatusActive,
			CommitteeID:   in.CommitteeID,
		}
		if err := validateCandidacy(tx, &candidate); err != nil {
			return err
		}
		if err := tx.Create(&candidate).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflictf("candidate already exists for this user/election")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

// validateCandidacy is the commit-time coherence check shared by create and
// update.
func validateCandidacy(tx *gorm.DB, c *types.Candidate) error {
	var user types.User
	if err := tx.First(&user, c.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("user not found")
		}
		return err
	}

	var election types.Election
	if err := tx.First(&election, c.ElectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("election not found")
		}
		return err
	}
	if election.ElectionType != c.CandidateType {
		return Validationf("candidate type must match election type")
	}

	if c.CandidateType == types.ElectionTypeBoard {
		var committee types.Committee
		if err := tx.First(&committee, *c.CommitteeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Validationf("committee not found or inactive")
			}
			return err
		}
		if !committee.IsActive {
			return Validationf("committee not found or inactive")
		}
		if user.CommitteeID == nil || *user.CommitteeID != committee.ID {
			return Validationf("user must be a member of the committee to run as board candidate")
		}
		if election.CommitteeID != nil && *election.CommitteeID != committee.ID {
			return Validationf("candidate committee must match election committee")
		}
	}
	return nil
}

func GetCandidate(db *gorm.DB, id uint64) (*types.Candidate, error) {
	var candidate types.Candidate
	if err := db.First(&candidate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("candidate not found")
		}
		return nil, err
	}
	return &candidate, nil
}

// ListCandidates filters on election and/or type when given.
func ListCandidates(db *gorm.DB, electionID uint64, candidateType string) ([]types.Candidate, error) {
	q := db.Order("created_at DESC")
	if electionID != 0 {
		q = q.Where("election_id = ?", electionID)
	}
	if candidateType != "" {
		q = q.Where("candidate_type = ?", candidateType)
	}
	var candidates []types.Candidate
	if err := q.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

type UpdateCandidateInput struct {
	Name   *string
	Status *string
}

// UpdateCandidate re-runs the full coherence check against the current
// election and committee state before applying the change.
func UpdateCandidate(db *gorm.DB, id uint64, in UpdateCandidateInput) (*types.Candidate, error) {
	var updated *types.Candidate
	err := db.Transaction(func(tx *gorm.DB) error {
		candidate, err := GetCandidate(tx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if *in.Name == "" {
				return Validationf("name cannot be empty")
			}
			candidate.Name = *in.Name
		}
		if in.Status != nil {
			if *in.Status != types.CandidateStatusActive && *in.Status != types.CandidateStatusWithdrawn {
				return Validationf("status must be 'active' or 'withdrawn'")
			}
			candidate.Status = *in.Status
		}
		if err := validateCandidacy(tx, candidate); err != nil {
			return err
		}
		if err := tx.Save(candidate).Error; err != nil {
			return err
		}
		updated = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCandidate refuses once ballots reference the candidate; results
// must stay reconstructible.
func DeleteCandidate(db *gorm.DB, id uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetCandidate(tx, id); err != nil {
			return err
		}
		var voted int64
		if err := tx.Model(&types.Vote{}).Where("candidate_id = ?", id).Count(&voted).Error; err != nil {
			return err
		}
		if voted > 0 {
			return Conflictf("cannot delete candidate with recorded votes")
		}
		return tx.Delete(&types.Candidate{}, id).Error
	})
}
