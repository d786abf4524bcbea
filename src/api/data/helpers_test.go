package data

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openassembly/election-api/src/api/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&types.Permission{}, &types.Role{},
		&types.User{}, &types.Committee{},
		&types.Election{}, &types.Candidate{}, &types.Vote{},
	))
	return db
}

func testRole(t *testing.T, db *gorm.DB) types.Role {
	t.Helper()
	var role types.Role
	err := db.Where(types.Role{Key: RoleMember}).
		Attrs(types.Role{Name: "Member", Description: "test member role", IsActive: true}).
		FirstOrCreate(&role).Error
	require.NoError(t, err)
	return role
}

func testUser(t *testing.T, db *gorm.DB, email string, verified bool) types.User {
	t.Helper()
	role := testRole(t, db)
	user := types.User{
		Email:      email,
		Password:   "x",
		RoleID:     role.ID,
		IsVerified: verified,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func testCommittee(t *testing.T, db *gorm.DB, name string, memberEmails ...string) (types.Committee, []types.User) {
	t.Helper()
	members := make([]types.User, 0, len(memberEmails))
	ids := make([]uint64, 0, len(memberEmails))
	for _, email := range memberEmails {
		u := testUser(t, db, email, true)
		members = append(members, u)
		ids = append(ids, u.ID)
	}
	creator := testUser(t, db, "creator-"+name+"@example.org", true)
	committee, err := CreateCommittee(db, CreateCommitteeInput{
		Name:        name,
		Description: "test committee",
		MemberIDs:   ids,
		CreatedBy:   creator.ID,
	})
	require.NoError(t, err)
	return *committee, members
}

func testElection(t *testing.T, db *gorm.DB, electionType string, committeeID *uint64, start, end time.Time) types.Election {
	t.Helper()
	creator := testUser(t, db, fmt.Sprintf("election-admin-%d@example.org", time.Now().UnixNano()), true)
	election, err := CreateElection(db, CreateElectionInput{
		ElectionType: electionType,
		Title:        "test election",
		StartDate:    start,
		EndDate:      end,
		CommitteeID:  committeeID,
		CreatedBy:    creator.ID,
	}, time.Now())
	require.NoError(t, err)
	return *election
}

func strptr(s string) *string { return &s }
