package v2

import (
	v2handler "github.com/damoang/angple-memo/internal/handler/v2"
	"github.com/gin-gonic/gin"
)

// SetupSessions configures login, provider sign-in and logout
func SetupSessions(api *gin.RouterGroup, h *v2handler.SessionHandler, auth gin.HandlerFunc) {
	sessions := api.Group("/sessions")
	sessions.POST("", h.Login)
	sessions.POST("/provider", h.ProviderSignIn)
	sessions.DELETE("", auth, h.Logout)
}

// SetupUsers configures signup and the current user's account
func SetupUsers(api *gin.RouterGroup, h *v2handler.UserHandler, auth gin.HandlerFunc) {
	users := api.Group("/users")
	users.POST("", h.Signup)

	me := users.Group("/me", auth)
	me.GET("", h.Me)
	me.PATCH("/settings", h.UpdateSettings)
	me.DELETE("", h.Delete)
}

// SetupMemos configures memo and tag routes. Single memos are readable
// anonymously when public, everything else requires auth.
func SetupMemos(api *gin.RouterGroup, h *v2handler.MemoHandler, auth gin.HandlerFunc) {
	memos := api.Group("/memos")
	memos.GET("", auth, h.List)
	memos.GET("/search", auth, h.Search)
	memos.GET("/:id", h.Get)
	memos.POST("", auth, h.Create)
	memos.PUT("/:id", auth, h.Update)
	memos.PATCH("/:id/visibility", auth, h.SetVisibility)
	memos.DELETE("/:id", auth, h.Delete)

	api.GET("/tags", auth, h.Tags)
}

// SetupGroups configures groups, memberships and invitations
func SetupGroups(api *gin.RouterGroup, gh *v2handler.GroupHandler, ih *v2handler.InvitationHandler, auth gin.HandlerFunc) {
	groups := api.Group("/groups", auth)
	groups.GET("", gh.List)
	groups.POST("", gh.Create)
	groups.GET("/:id", gh.Get)
	groups.PUT("/:id", gh.Update)
	groups.DELETE("/:id", gh.Delete)
	groups.GET("/:id/members", gh.Members)
	groups.DELETE("/:id/members/:user_id", gh.RemoveMember)
	groups.POST("/:id/leave", gh.Leave)

	groups.GET("/:id/invitations", ih.List)
	groups.POST("/:id/invitations", ih.Create)
	groups.DELETE("/:id/invitations/:invitation_id", ih.Revoke)

	api.POST("/invitations/:token/accept", auth, ih.Accept)
}
