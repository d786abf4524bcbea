package types

import "time"

// Election and candidate types
const (
	ElectionTypeBoard     = "board"
	ElectionTypePresident = "president"
)

// Election lifecycle. Transitions are monotonic: draft -> active -> closed.
const (
	ElectionStatusDraft  = "draft"
	ElectionStatusActive = "active"
	ElectionStatusClosed = "closed"
)

const (
	CandidateStatusActive    = "active"
	CandidateStatusWithdrawn = "withdrawn"
)

const (
	BoardChoiceYes = "yes"
	BoardChoiceNo  = "no"
)

func ValidElectionType(t string) bool {
	return t == ElectionTypeBoard || t == ElectionTypePresident
}

func ValidBoardChoice(c string) bool {
	return c == BoardChoiceYes || c == BoardChoiceNo
}

// Permissions
type Permission struct {
	ID          uint32    `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"size:64;unique;not null" json:"key"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:255;not null" json:"description"`
	Category    string    `gorm:"size:64;index;not null" json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Roles hold a set of permission references
type Role struct {
	ID          uint32       `gorm:"primaryKey" json:"id"`
	Key         string       `gorm:"size:64;unique;not null" json:"key"`
	Name        string       `gorm:"size:128;not null" json:"name"`
	Description string       `gorm:"size:255;not null" json:"description"`
	IsActive    bool         `gorm:"default:true" json:"isActive"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Members. CommitteeID is the authoritative membership relation; the
// Committee.Members association is derived from it.
type User struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"size:256;unique;not null" json:"email"`
	Password    string    `gorm:"size:128;not null" json:"-"`
	RoleID      uint32    `gorm:"index;not null" json:"roleId"`
	Role        *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsVerified  bool      `gorm:"default:false" json:"isVerified"`
	CommitteeID *uint64   `gorm:"index" json:"committeeId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Committees scope board elections and candidacies
type Committee struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;unique;not null" json:"name"`
	Description string    `gorm:"size:1024;not null" json:"description"`
	CreatedBy   uint64    `gorm:"index;not null" json:"createdBy"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	Members     []User    `gorm:"foreignKey:CommitteeID" json:"members,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Elections. CommitteeID is set iff ElectionType is board.
type Election struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	ElectionType string    `gorm:"size:16;index:idx_elections_type_status;not null" json:"electionType"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"size:1024" json:"description"`
	StartDate    time.Time `gorm:"not null" json:"startDate"`
	EndDate      time.Time `gorm:"not null" json:"endDate"`
	Status       string    `gorm:"size:16;index:idx_elections_type_status;default:draft" json:"status"`
	CreatedBy    uint64    `gorm:"index;not null" json:"createdBy"`
	CommitteeID  *uint64   `gorm:"index" json:"committeeId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Candidacies. Name is a snapshot taken at declaration time; one candidacy
// per (user, election), enforced by the unique index.
type Candidate struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	UserID        uint64    `gorm:"uniqueIndex:uq_candidates_user_election;not null" json:"userId"`
	ElectionID    uint64    `gorm:"uniqueIndex:uq_candidates_user_election;index;not null" json:"electionId"`
	CandidateType string    `gorm:"size:16;not null" json:"candidateType"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Status        string    `gorm:"size:16;default:active" json:"status"`
	CommitteeID   *uint64   `gorm:"index" json:"committeeId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Votes are append-only; there is no update or delete path. ElectionType is
// a snapshot of the election's type at cast time. BoardChoice is set iff the
// election is a board election. The unique index is the final arbiter of the
// one-ballot-per-candidate invariant; the one-vote-per-president-election
// limit is enforced inside the cast transaction.
type Vote struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	ElectionID   uint64    `gorm:"uniqueIndex:uq_votes_member_candidate;index;not null" json:"electionId"`
	MemberID     uint64    `gorm:"uniqueIndex:uq_votes_member_candidate;index;not null" json:"memberId"`
	CandidateID  uint64    `gorm:"uniqueIndex:uq_votes_member_candidate;not null" json:"candidateId"`
	ElectionType string    `gorm:"size:16;not null" json:"electionType"`
	BoardChoice  *string   `gorm:"size:8" json:"boardChoice,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
