package webserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openassembly/election-api/src/api/data"
	"github.com/openassembly/election-api/src/api/types"
)

var testSecret = []byte("test-secret")

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ws_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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
	require.NoError(t, data.SeedRolesAndPermissions(db))
	return db
}

func testUser(t *testing.T, db *gorm.DB, email, roleKey, password string, verified bool) types.User {
	t.Helper()
	role, err := data.RoleByKey(db, roleKey)
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := types.User{
		Email:      email,
		Password:   string(hash),
		RoleID:     role.ID,
		IsVerified: verified,
	}
	require.NoError(t, db.Create(&user).Error)
	user.Role = role
	return user
}

func bearerFor(t *testing.T, user *types.User) string {
	t.Helper()
	token, err := issueAccessToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

// do runs one request through a router and returns the recorder.
func do(router *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func init() {
	gin.SetMode(gin.TestMode)
}
