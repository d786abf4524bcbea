package data

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/types"
)

type CreateElectionInput struct {
	ElectionType string
	Title        string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	CommitteeID  *uint64
	CreatedBy    uint64
}

// CreateElection enforces the type/committee coherence rules and rejects any
// date overlap with an existing draft or active election of the same type
// (and, for board elections, the same committee). Initial status is computed
// from the clock.
func CreateElection(db *gorm.DB, in CreateElectionInput, now time.Time) (*types.Election, error) {
	if in.Title == "" {
		return nil, Validationf("electionType, title, startDate, and endDate are required")
	}
	if !types.ValidElectionType(in.ElectionType) {
		return nil, Validationf("electionType must be 'board' or 'president'")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, Validationf("electionType, title, startDate, and endDate are required")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, Validationf("end date must be after start date")
	}
	if in.ElectionType == types.ElectionTypeBoard && in.CommitteeID == nil {
		return nil, Validationf("committeeId is required for board elections")
	}
	if in.ElectionType == types.ElectionTypePresident && in.CommitteeID != nil {
		return nil, Validationf("committeeId is not allowed for president elections")
	}

	var election types.Election
	err := db.Transaction(func(tx *gorm.DB) error {
		if in.ElectionType == types.ElectionTypeBoard {
			var committee types.Committee
			if err := tx.First(&committee, *in.CommitteeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return Validationf("committee not found or inactive")
				}
				return err
			}
			if !committee.IsActive {
				return Validationf("committee not found or inactive")
			}
		}

		// Overlap whenever existing.start <= new.end && existing.end >= new.start.
		overlap := tx.Model(&types.Election{}).
			Where("election_type = ? AND status IN ?", in.ElectionType,
				[]string{types.ElectionStatusDraft, types.ElectionStatusActive}).
			Where("start_date <= ? AND end_date >= ?", in.EndDate, in.StartDate)
		if in.ElectionType == types.ElectionTypeBoard {
			overlap = overlap.Where("committee_id = ?", *in.CommitteeID)
		}
		var conflicting int64
		if err := overlap.Count(&conflicting).Error; err != nil {
			return err
		}
		if conflicting > 0 {
			return Conflictf("an election of this type already exists during the specified period")
		}

		status := types.ElectionStatusDraft
		if !in.StartDate.After(now) {
			status = types.ElectionStatusActive
		}
		election = types.Election{
			ElectionType: in.ElectionType,
			Title:        in.Title,
			Description:  in.Description,
			StartDate:    in.StartDate,
			EndDate:      in.EndDate,
			Status:       status,
			CreatedBy:    in.CreatedBy,
			CommitteeID:  in.CommitteeID,
		}
		return tx.Create(&election).Error
	})
	if err != nil {
		return nil, err
	}
	return &election, nil
}

func GetElection(db *gorm.DB, id uint64) (*types.Election, error) {
	var election types.Election
	if err := db.First(&election, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("election not found")
		}
		return nil, err
	}
	return &election, nil
}

// ListElections filters on status and/or type when given.
func ListElections(db *gorm.DB, status, electionType string) ([]types.Election, error) {
	q := db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if electionType != "" {
		q = q.Where("election_type = ?", electionType)
	}
	var elections []types.Election
	if err := q.Find(&elections).Error; err != nil {
		return nil, err
	}
	return elections, nil
}

// ActiveElections lists active elections whose voting window contains now.
func ActiveElections(db *gorm.DB, now time.Time) ([]types.Election, error) {
	var elections []types.Election
	err := db.Where("status = ? AND start_date <= ? AND end_date >= ?",
		types.ElectionStatusActive, now, now).
		Find(&elections).Error
	if err != nil {
		return nil, err
	}
	return elections, nil
}

type UpdateElectionInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
}

// UpdateElection forbids touching closed elections and rejects the
// draft -> closed shortcut; the lifecycle must pass through active.
func UpdateElection(db *gorm.DB, id uint64, in UpdateElectionInput) (*types.Election, error) {
	var updated *types.Election
	err := db.Transaction(func(tx *gorm.DB) error {
		election, err := GetElection(tx, id)
		if err != nil {
			return err
		}
		if election.Status == types.ElectionStatusClosed {
			return Validationf("cannot update closed elections")
		}

		update := map[string]interface{}{}
		if in.Title != nil {
			update["title"] = *in.Title
		}
		if in.Description != nil {
			update["description"] = *in.Description
		}
		start, end := election.StartDate, election.EndDate
		if in.StartDate != nil {
			start = *in.StartDate
			update["start_date"] = start
		}
		if in.EndDate != nil {
			end = *in.EndDate
			update["end_date"] = end
		}
		if !end.After(start) {
			return Validationf("end date must be after start date")
		}
		if in.Status != nil {
			next := *in.Status
			switch next {
			case types.ElectionStatusDraft, types.ElectionStatusActive, types.ElectionStatusClosed:
			default:
				return Validationf("invalid status %q", next)
			}
			if election.Status == types.ElectionStatusDraft && next == types.ElectionStatusClosed {
				return Validationf("cannot close a draft election")
			}
			if election.Status == types.ElectionStatusActive && next == types.ElectionStatusDraft {
				return Validationf("cannot move an active election back to draft")
			}
			update["status"] = next
		}
		if len(update) == 0 {
			updated = election
			return nil
		}
		if err := tx.Model(election).Updates(update).Error; err != nil {
			return err
		}
		updated, err = GetElection(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteElection refuses for active elections and for elections that
// candidacies or ballots already reference.
func DeleteElection(db *gorm.DB, id uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		election, err := GetElection(tx, id)
		if err != nil {
			return err
		}
		if election.Status == types.ElectionStatusActive {
			return Validationf("cannot delete active elections")
		}

		var referenced int64
		if err := tx.Model(&types.Candidate{}).Where("election_id = ?", id).Count(&referenced).Error; err != nil {
			return err
		}
		if referenced == 0 {
			if err := tx.Model(&types.Vote{}).Where("election_id = ?", id).Count(&referenced).Error; err != nil {
				return err
			}
		}
		if referenced > 0 {
			return Conflictf("cannot delete election with recorded candidacies or votes")
		}
		return tx.Delete(&types.Election{}, id).Error
	})
}

// StartElection moves a draft election to active once its scheduled start
// has passed.
func StartElection(db *gorm.DB, id uint64, now time.Time) (*types.Election, error) {
	var started *types.Election
	err := db.Transaction(func(tx *gorm.DB) error {
		election, err := GetElection(tx, id)
		if err != nil {
			return err
		}
		if election.Status != types.ElectionStatusDraft {
			return Validationf("only draft elections can be started")
		}
		if election.StartDate.After(now) {
			return Validationf("cannot start election before its scheduled start date")
		}
		if err := tx.Model(election).Update("status", types.ElectionStatusActive).Error; err != nil {
			return err
		}
		started, err = GetElection(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

func CloseElection(db *gorm.DB, id uint64) (*types.Election, error) {
	var closed *types.Election
	err := db.Transaction(func(tx *gorm.DB) error {
		election, err := GetElection(tx, id)
		if err != nil {
			return err
		}
		if election.Status != types.ElectionStatusActive {
			return Validationf("only active elections can be closed")
		}
		if err := tx.Model(election).Update("status", types.ElectionStatusClosed).Error; err != nil {
			return err
		}
		closed, err = GetElection(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}
