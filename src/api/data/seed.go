package data

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/types"
)

// Permission keys
const (
	PermViewDashboard = "view_dashboard"
	PermViewAnalytics = "view_analytics"
	PermViewReports   = "view_reports"

	PermCreateElection      = "create_election"
	PermViewElections       = "view_elections"
	PermEditElection        = "edit_election"
	PermDeleteElection      = "delete_election"
	PermStartElection       = "start_election"
	PermCloseElection       = "close_election"
	PermViewElectionResults = "view_election_results"

	PermViewUsers           = "view_users"
	PermCreateUser          = "create_user"
	PermEditUser            = "edit_user"
	PermDeleteUser          = "delete_user"
	PermVerifyUser          = "verify_user"
	PermViewUnverifiedUsers = "view_unverified_users"
	PermManageUserRoles     = "manage_user_roles"

	PermViewCommittees         = "view_committees"
	PermCreateCommittee        = "create_committee"
	PermEditCommittee          = "edit_committee"
	PermDeleteCommittee        = "delete_committee"
	PermManageCommitteeMembers = "manage_committee_members"

	PermViewCandidates   = "view_candidates"
	PermCreateCandidate  = "create_candidate"
	PermEditCandidate    = "edit_candidate"
	PermDeleteCandidate  = "delete_candidate"
	PermApproveCandidate = "approve_candidate"

	PermCastVote        = "cast_vote"
	PermViewOwnVotes    = "view_own_votes"
	PermViewAllVotes    = "view_all_votes"
	PermViewVoteResults = "view_vote_results"

	PermManageSystemSettings = "manage_system_settings"
	PermViewSystemLogs       = "view_system_logs"
	PermManageBackups        = "manage_backups"

	PermViewOwnCommittee          = "view_own_committee"
	PermManageOwnCommitteeMembers = "manage_own_committee_members"
	PermViewCommitteeAnalytics    = "view_committee_analytics"
)

// Role keys
const (
	RoleAdmin              = "admin"
	RoleElectionManager    = "election_manager"
	RoleCommitteeHead      = "committee_head"
	RoleMember             = "member"
	RoleBoardCandidate     = "board_candidate"
	RolePresidentCandidate = "president_candidate"
)

type permissionSeed struct {
	key, name, description, category string
}

var permissionCatalog = []permissionSeed{
	{PermViewDashboard, "View Dashboard", "Access to main dashboard", "dashboard_access"},
	{PermViewAnalytics, "View Analytics", "Access to analytics and reports", "dashboard_access"},
	{PermViewReports, "View Reports", "Access to system reports", "dashboard_access"},

	{PermCreateElection, "Create Election", "Create new elections", "election_management"},
	{PermViewElections, "View Elections", "View all elections", "election_management"},
	{PermEditElection, "Edit Election", "Edit election details", "election_management"},
	{PermDeleteElection, "Delete Election", "Delete elections", "election_management"},
	{PermStartElection, "Start Election", "Start elections", "election_management"},
	{PermCloseElection, "Close Election", "Close elections", "election_management"},
	{PermViewElectionResults, "View Election Results", "View election results", "election_management"},

	{PermViewUsers, "View Users", "View all users", "user_management"},
	{PermCreateUser, "Create User", "Create new users", "user_management"},
	{PermEditUser, "Edit User", "Edit user details", "user_management"},
	{PermDeleteUser, "Delete User", "Delete users", "user_management"},
	{PermVerifyUser, "Verify User", "Verify member accounts", "user_management"},
	{PermViewUnverifiedUsers, "View Unverified Users", "List accounts awaiting verification", "user_management"},
	{PermManageUserRoles, "Manage User Roles", "Assign roles to users", "user_management"},

	{PermViewCommittees, "View Committees", "View all committees", "committee_management"},
	{PermCreateCommittee, "Create Committee", "Create new committees", "committee_management"},
	{PermEditCommittee, "Edit Committee", "Edit committee details", "committee_management"},
	{PermDeleteCommittee, "Delete Committee", "Delete committees", "committee_management"},
	{PermManageCommitteeMembers, "Manage Committee Members", "Add and remove committee members", "committee_management"},

	{PermViewCandidates, "View Candidates", "View all candidates", "candidate_management"},
	{PermCreateCandidate, "Create Candidate", "Declare candidacies", "candidate_management"},
	{PermEditCandidate, "Edit Candidate", "Edit candidate details", "candidate_management"},
	{PermDeleteCandidate, "Delete Candidate", "Delete candidates", "candidate_management"},
	{PermApproveCandidate, "Approve Candidate", "Approve declared candidacies", "candidate_management"},

	{PermCastVote, "Cast Vote", "Cast ballots in elections", "vote_management"},
	{PermViewOwnVotes, "View Own Votes", "View own voting history", "vote_management"},
	{PermViewAllVotes, "View All Votes", "View every recorded ballot", "vote_management"},
	{PermViewVoteResults, "View Vote Results", "View tallied results", "vote_management"},

	{PermManageSystemSettings, "Manage System Settings", "Change system settings", "system_settings"},
	{PermViewSystemLogs, "View System Logs", "Access system logs", "system_settings"},
	{PermManageBackups, "Manage Backups", "Manage system backups", "system_settings"},

	{PermViewOwnCommittee, "View Own Committee", "View own committee data", "committee_specific"},
	{PermManageOwnCommitteeMembers, "Manage Own Committee Members", "Manage members of own committee", "committee_specific"},
	{PermViewCommitteeAnalytics, "View Committee Analytics", "View committee analytics", "committee_specific"},
}

type roleSeed struct {
	key, name, description string
	permissions            []string
}

var memberPermissions = []string{
	PermViewDashboard, PermViewElections, PermViewElectionResults,
	PermCastVote, PermViewOwnVotes, PermViewCandidates,
}

var roleCatalog = []roleSeed{
	{RoleAdmin, "Administrator", "Full system access with all permissions", nil}, // nil = every permission
	{RoleElectionManager, "Election Manager", "Can manage elections and view results", []string{
		PermViewDashboard, PermViewAnalytics, PermViewReports,
		PermCreateElection, PermViewElections, PermEditElection, PermDeleteElection,
		PermStartElection, PermCloseElection, PermViewElectionResults,
		PermViewCandidates, PermApproveCandidate,
		PermViewAllVotes, PermViewVoteResults,
	}},
	{RoleCommitteeHead, "Committee Head", "Can manage committee members and view committee data", []string{
		PermViewDashboard, PermViewCommittees, PermEditCommittee, PermManageCommitteeMembers,
		PermViewCandidates, PermCreateCandidate,
		PermViewElections, PermViewElectionResults, PermViewVoteResults,
		PermViewOwnCommittee, PermManageOwnCommitteeMembers, PermViewCommitteeAnalytics,
	}},
	{RoleMember, "Member", "Basic member with voting rights", memberPermissions},
	{RoleBoardCandidate, "Board Candidate", "Member running for a board position", memberPermissions},
	{RolePresidentCandidate, "President Candidate", "Member running for president", memberPermissions},
}

// SeedRolesAndPermissions upserts the static permission catalog and role
// definitions by natural key. Safe to run on every startup.
func SeedRolesAndPermissions(db *gorm.DB) error {
	byKey := make(map[string]types.Permission, len(permissionCatalog))
	for _, p := range permissionCatalog {
		perm := types.Permission{Key: p.key}
		if err := db.Where(types.Permission{Key: p.key}).
			Assign(types.Permission{Name: p.name, Description: p.description, Category: p.category}).
			FirstOrCreate(&perm).Error; err != nil {
			return err
		}
		byKey[p.key] = perm
	}

	for _, r := range roleCatalog {
		role := types.Role{Key: r.key}
		if err := db.Where(types.Role{Key: r.key}).
			Assign(types.Role{Name: r.name, Description: r.description, IsActive: true}).
			FirstOrCreate(&role).Error; err != nil {
			return err
		}

		keys := r.permissions
		if keys == nil {
			keys = make([]string, 0, len(permissionCatalog))
			for _, p := range permissionCatalog {
				keys = append(keys, p.key)
			}
		}
		perms := make([]types.Permission, 0, len(keys))
		for _, k := range keys {
			perms = append(perms, byKey[k])
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}

	log.Printf("seeded %d permissions, %d roles", len(permissionCatalog), len(roleCatalog))
	return nil
}

// BootstrapAdmin creates a verified admin account from env config when no
// user with that email exists yet.
func BootstrapAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var role types.Role
	if err := db.First(&role, "`key` = ?", RoleAdmin).Error; err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var user types.User
	err = db.Where(types.User{Email: email}).
		Attrs(types.User{Password: string(hash), RoleID: role.ID, IsVerified: true}).
		FirstOrCreate(&user).Error
	return err
}

// RoleByKey resolves a role or fails with a validation error, used when
// signup requests a role by key.
func RoleByKey(db *gorm.DB, key string) (*types.Role, error) {
	var role types.Role
	if err := db.First(&role, "`key` = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Validationf("unknown role %q", key)
		}
		return nil, err
	}
	return &role, nil
}

// RolePermissionKeys returns the permission keys attached to a role.
func RolePermissionKeys(db *gorm.DB, roleID uint32) ([]string, error) {
	var role types.Role
	if err := db.Preload("Permissions").First(&role, roleID).Error; err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		keys = append(keys, p.Key)
	}
	return keys, nil
}
