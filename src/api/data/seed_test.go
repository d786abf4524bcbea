package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openassembly/election-api/src/api/types"
)

func TestSeedRolesAndPermissionsIdempotent(t *testing.T) {
	db := testDB(t)

	require.NoError(t, SeedRolesAndPermissions(db))
	require.NoError(t, SeedRolesAndPermissions(db))

	var permCount, roleCount int64
	require.NoError(t, db.Model(&types.Permission{}).Count(&permCount).Error)
	require.NoError(t, db.Model(&types.Role{}).Count(&roleCount).Error)
	assert.Equal(t, int64(len(permissionCatalog)), permCount)
	assert.Equal(t, int64(6), roleCount)

	// admin carries every permission
	admin, err := RoleByKey(db, RoleAdmin)
	require.NoError(t, err)
	keys, err := RolePermissionKeys(db, admin.ID)
	require.NoError(t, err)
	assert.Len(t, keys, len(permissionCatalog))

	// member carries the basic voting set
	member, err := RoleByKey(db, RoleMember)
	require.NoError(t, err)
	keys, err = RolePermissionKeys(db, member.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, memberPermissions, keys)
}

func TestSeedRepairsDriftedRole(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SeedRolesAndPermissions(db))

	member, err := RoleByKey(db, RoleMember)
	require.NoError(t, err)
	require.NoError(t, db.Model(member).Association("Permissions").Clear())

	require.NoError(t, SeedRolesAndPermissions(db))
	keys, err := RolePermissionKeys(db, member.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, memberPermissions, keys)
}

func TestBootstrapAdmin(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SeedRolesAndPermissions(db))

	require.NoError(t, BootstrapAdmin(db, "root@example.org", "changeme"))
	// a second run must not duplicate or overwrite
	require.NoError(t, BootstrapAdmin(db, "root@example.org", "other"))

	var admins []types.User
	require.NoError(t, db.Where("email = ?", "root@example.org").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsVerified)
	assert.NotEqual(t, "changeme", admins[0].Password)

	role, err := RoleByKey(db, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, role.ID, admins[0].RoleID)

	// blank config means no bootstrap
	require.NoError(t, BootstrapAdmin(db, "", ""))
}

func TestRoleByKeyUnknown(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SeedRolesAndPermissions(db))

	_, err := RoleByKey(db, "emperor")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}
