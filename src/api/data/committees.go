package data

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/types"
)

type CreateCommitteeInput struct {
	Name        string
	Description string
	MemberIDs   []uint64
	CreatedBy   uint64
}

// CreateCommittee validates the initial member set and links every member's
// committee reference in the same transaction as the insert, so the
// membership relation never half-applies.
func CreateCommittee(db *gorm.DB, in CreateCommitteeInput) (*types.Committee, error) {
	if in.Name == "" || in.Description == "" {
		return nil, Validationf("name and description are required")
	}
	if len(in.MemberIDs) == 0 {
		return nil, Validationf("committee must have at least one member")
	}

	var committee types.Committee
	err := db.Transaction(func(tx *gorm.DB) error {
		var members []types.User
		if err := tx.Find(&members, in.MemberIDs).Error; err != nil {
			return err
		}
		if len(members) != len(in.MemberIDs) {
			return Validationf("some members are invalid or not verified")
		}
		for _, m := range members {
			if !m.IsVerified {
				return Validationf("some members are invalid or not verified")
			}
			if m.CommitteeID != nil {
				return Validationf("member %s already belongs to another committee", m.Email)
			}
		}

		committee = types.Committee{
			Name:        in.Name,
			Description: in.Description,
			CreatedBy:   in.CreatedBy,
			IsActive:    true,
		}
		if err := tx.Create(&committee).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflictf("committee name already exists")
			}
			return err
		}
		return tx.Model(&types.User{}).
			Where("id IN ?", in.MemberIDs).
			Update("committee_id", committee.ID).Error
	})
	if err != nil {
		return nil, err
	}
	if err := db.Preload("Members").First(&committee, committee.ID).Error; err != nil {
		return nil, err
	}
	return &committee, nil
}

func GetCommittee(db *gorm.DB, id uint64) (*types.Committee, error) {
	var committee types.Committee
	if err := db.Preload("Members").First(&committee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("committee not found")
		}
		return nil, err
	}
	return &committee, nil
}

// ListCommittees optionally filters on the active flag.
func ListCommittees(db *gorm.DB, isActive *bool) ([]types.Committee, error) {
	q := db.Preload("Members").Order("created_at DESC")
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}
	var committees []types.Committee
	if err := q.Find(&committees).Error; err != nil {
		return nil, err
	}
	return committees, nil
}

type UpdateCommitteeInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// UpdateCommittee refuses to deactivate while any draft or active election
// references the committee; board voting and candidacy checks require the
// committee active, so deactivating mid-election would strand the ballots.
func UpdateCommittee(db *gorm.DB, id uint64, in UpdateCommitteeInput) (*types.Committee, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		committee, err := GetCommittee(tx, id)
		if err != nil {
			return err
		}
		update := map[string]interface{}{}
		if in.Name != nil {
			if *in.Name == "" {
				return Validationf("name cannot be empty")
			}
			update["name"] = *in.Name
		}
		if in.Description != nil {
			update["description"] = *in.Description
		}
		if in.IsActive != nil {
			if committee.IsActive && !*in.IsActive {
				var open int64
				if err := tx.Model(&types.Election{}).
					Where("committee_id = ? AND status IN ?", id,
						[]string{types.ElectionStatusDraft, types.ElectionStatusActive}).
					Count(&open).Error; err != nil {
					return err
				}
				if open > 0 {
					return Validationf("cannot deactivate committee with active or draft elections")
				}
			}
			update["is_active"] = *in.IsActive
		}
		if len(update) == 0 {
			return nil
		}
		if err := tx.Model(committee).Updates(update).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflictf("committee name already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCommittee(db, id)
}

// DeleteCommittee refuses while any draft or active election references the
// committee, then clears every member's back-reference before removing it.
func DeleteCommittee(db *gorm.DB, id uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var committee types.Committee
		if err := tx.First(&committee, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("committee not found")
			}
			return err
		}

		var open int64
		if err := tx.Model(&types.Election{}).
			Where("committee_id = ? AND status IN ?", id,
				[]string{types.ElectionStatusDraft, types.ElectionStatusActive}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return Validationf("cannot delete committee with active or draft elections")
		}

		if err := tx.Model(&types.User{}).
			Where("committee_id = ?", id).
			Update("committee_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&types.Committee{}, id).Error
	})
}

// AddCommitteeMember appends a verified, unaffiliated user to an active
// committee and mirrors the back-reference.
func AddCommitteeMember(db *gorm.DB, committeeID, userID uint64) (*types.Committee, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var committee types.Committee
		if err := tx.First(&committee, committeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("committee not found")
			}
			return err
		}
		if !committee.IsActive {
			return Validationf("cannot add members to inactive committee")
		}

		var user types.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("user not found")
			}
			return err
		}
		if !user.IsVerified {
			return Validationf("only verified users can be added to committees")
		}
		if user.CommitteeID != nil {
			if *user.CommitteeID == committeeID {
				return Conflictf("user is already a member of this committee")
			}
			return Validationf("user already belongs to another committee")
		}

		return tx.Model(&user).Update("committee_id", committeeID).Error
	})
	if err != nil {
		return nil, err
	}
	return GetCommittee(db, committeeID)
}

// RemoveCommitteeMember refuses while the user is an active candidate in a
// currently active election tied to this committee; removal would orphan an
// in-flight candidacy.
func RemoveCommitteeMember(db *gorm.DB, committeeID, userID uint64) (*types.Committee, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var committee types.Committee
		if err := tx.First(&committee, committeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("committee not found")
			}
			return err
		}

		var user types.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("user not found")
			}
			return err
		}
		if user.CommitteeID == nil || *user.CommitteeID != committeeID {
			return NotFoundf("user is not a member of this committee")
		}

		var inFlight int64
		if err := tx.Model(&types.Candidate{}).
			Joins("JOIN elections ON elections.id = candidates.election_id").
			Where("candidates.user_id = ? AND candidates.committee_id = ? AND candidates.status = ?",
				userID, committeeID, types.CandidateStatusActive).
			Where("elections.status = ?", types.ElectionStatusActive).
			Count(&inFlight).Error; err != nil {
			return err
		}
		if inFlight > 0 {
			return Validationf("cannot remove member who is an active candidate in ongoing elections")
		}

		return tx.Model(&user).Update("committee_id", nil).Error
	})
	if err != nil {
		return nil, err
	}
	return GetCommittee(db, committeeID)
}

func CommitteeMembers(db *gorm.DB, committeeID uint64) ([]types.User, error) {
	committee, err := GetCommittee(db, committeeID)
	if err != nil {
		return nil, err
	}
	return committee.Members, nil
}

// UserCommittees lists the active committees the user belongs to.
func UserCommittees(db *gorm.DB, userID uint64) ([]types.Committee, error) {
	var committees []types.Committee
	err := db.Preload("Members").
		Joins("JOIN users ON users.committee_id = committees.id").
		Where("users.id = ? AND committees.is_active = ?", userID, true).
		Find(&committees).Error
	if err != nil {
		return nil, err
	}
	return committees, nil
}

// IsCommitteeMember reports membership via the authoritative relation.
func IsCommitteeMember(db *gorm.DB, committeeID, userID uint64) (bool, error) {
	var n int64
	err := db.Model(&types.User{}).
		Where("id = ? AND committee_id = ?", userID, committeeID).
		Count(&n).Error
	return n > 0, err
}
