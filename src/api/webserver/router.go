package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/config"
	"github.com/openassembly/election-api/src/api/data"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	sanitizer := bluemonday.StrictPolicy()
	secret := []byte(cfg.JWTSecret)
	authed := JWTMiddleware(db, secret)
	authLimiter := RateLimitMiddleware(NewRateLimiter(10, time.Minute))
	voteLimiter := RateLimitMiddleware(NewRateLimiter(30, time.Minute))

	authH := NewAuth(db, rdb, secret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	usersH := NewUsers(db)
	committeeH := NewCommittees(db, sanitizer)
	electionH := NewElections(db, sanitizer)
	candidateH := NewCandidates(db)
	voteH := NewVotes(db, rdb)

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authLimiter, authH.Signup)
		auth.POST("/login", authLimiter, authH.Login)
		auth.POST("/refresh", authLimiter, authH.Refresh)
		auth.GET("/profile", authed, authH.Profile)
		auth.POST("/logout", authed, authH.Logout)
		auth.GET("/permissions", authed, authH.Permissions)
		auth.GET("/unverified", authed, RequirePermission(db, rdb, data.PermViewUnverifiedUsers), authH.Unverified)
		auth.PATCH("/verify/:id", authed, RequirePermission(db, rdb, data.PermVerifyUser), authH.VerifyUser)
	}

	users := v1.Group("/users", authed)
	{
		users.GET("", RequirePermission(db, rdb, data.PermViewUsers), usersH.List)
		users.GET("/:id", RequirePermission(db, rdb, data.PermViewUsers), usersH.Get)
		users.POST("", RequirePermission(db, rdb, data.PermCreateUser), usersH.Create)
		users.PATCH("/:id", RequirePermission(db, rdb, data.PermEditUser, data.PermManageUserRoles), usersH.Update)
		users.DELETE("/:id", RequirePermission(db, rdb, data.PermDeleteUser), usersH.Delete)
	}

	committees := v1.Group("/committees")
	{
		committees.GET("", committeeH.List)
		committees.GET("/:id", committeeH.Get)
		committees.GET("/:id/members", committeeH.Members)
		committees.GET("/user/mine", authed, committeeH.Mine)
		committees.POST("", authed, RequireRole(data.RoleAdmin), committeeH.Create)
		committees.PUT("/:id", authed, RequireRole(data.RoleAdmin), committeeH.Update)
		committees.PATCH("/:id", authed, RequireRole(data.RoleAdmin), committeeH.Update)
		committees.DELETE("/:id", authed, RequireRole(data.RoleAdmin), committeeH.Delete)
		committees.POST("/:id/members", authed, RequireRole(data.RoleAdmin), committeeH.AddMember)
		committees.DELETE("/:id/members", authed, RequireRole(data.RoleAdmin), committeeH.RemoveMember)
	}

	elections := v1.Group("/elections")
	{
		elections.GET("", electionH.List)
		elections.GET("/active", electionH.Active)
		elections.GET("/:id", electionH.Get)
		elections.POST("", authed, RequireRole(data.RoleAdmin), electionH.Create)
		elections.PATCH("/:id", authed, RequireRole(data.RoleAdmin), electionH.Update)
		elections.DELETE("/:id", authed, RequireRole(data.RoleAdmin), electionH.Delete)
		elections.PATCH("/:id/start", authed, RequireRole(data.RoleAdmin), electionH.Start)
		elections.PATCH("/:id/close", authed, RequireRole(data.RoleAdmin), electionH.Close)
	}

	candidates := v1.Group("/candidates")
	{
		candidates.GET("", candidateH.List)
		candidates.GET("/:id", candidateH.Get)
		candidates.POST("", authed,
			RequireRole(data.RoleMember, data.RoleBoardCandidate, data.RolePresidentCandidate, data.RoleAdmin),
			candidateH.Create)
		candidates.PUT("/:id", authed, RequireRole(data.RoleAdmin), candidateH.Update)
		candidates.PATCH("/:id", authed, RequireRole(data.RoleAdmin), candidateH.Update)
		candidates.DELETE("/:id", authed, RequireRole(data.RoleAdmin), candidateH.Delete)
	}

	votes := v1.Group("/votes")
	{
		votes.POST("", authed, RequireVerified(), voteLimiter, voteH.Cast)
		votes.GET("/results/:electionType", voteH.Results)
		votes.GET("", authed, RequireRole(data.RoleAdmin), voteH.List)
		votes.GET("/mine", authed, voteH.Mine)
	}
}
