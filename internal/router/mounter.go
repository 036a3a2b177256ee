package router

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/internal/deps"
)

const (
	apiPrefix   = "/api/v1"
	adminPrefix = "/admin"
)

// MountFunc represents a function that mounts routes for a module
type MountFunc func(*gin.RouterGroup, *deps.Container)

type Mounter struct {
	container *deps.Container
	auth      gin.HandlerFunc
}

// NewMounter builds a mounter. auth authenticates the caller and puts the
// user id and permissions on the context; it is supplied by main so this
// package does not import the players module.
func NewMounter(container *deps.Container, auth gin.HandlerFunc) *Mounter {
	return &Mounter{container: container, auth: auth}
}

// Public routes - no authentication required
func (m *Mounter) Public(engine *gin.Engine) *RouteGroup {
	group := engine.Group(apiPrefix)
	return &RouteGroup{group: group, container: m.container}
}

// Authenticated routes - requires valid token
func (m *Mounter) Authenticated(engine *gin.Engine) *RouteGroup {
	group := engine.Group(apiPrefix)
	rg := &RouteGroup{group: group, container: m.container}
	if m.auth != nil {
		rg.WithAuth(m.auth)
	}
	return rg
}

// Admin routes live under /api/v1/admin. Each route checks its own
// permission with api.Can.
func (m *Mounter) Admin(engine *gin.Engine) *RouteGroup {
	return m.Authenticated(engine).Group(adminPrefix)
}

type RouteGroup struct {
	group     *gin.RouterGroup
	container *deps.Container
}

// Mount provides a fluent interface for mounting modules
func (rg *RouteGroup) Mount(mountFuncs ...MountFunc) *RouteGroup {
	for _, mountFunc := range mountFuncs {
		mountFunc(rg.group, rg.container)
	}
	return rg
}

// Group creates a sub-group for organizing routes
func (rg *RouteGroup) Group(path string) *RouteGroup {
	subGroup := rg.group.Group(path)
	return &RouteGroup{group: subGroup, container: rg.container}
}

// WithAuth adds authentication middleware
func (rg *RouteGroup) WithAuth(authMiddleware gin.HandlerFunc) *RouteGroup {
	rg.group.Use(authMiddleware)
	return rg
}

// WithPermission adds permission middleware
func (rg *RouteGroup) WithPermission(permissionMiddleware gin.HandlerFunc) *RouteGroup {
	rg.group.Use(permissionMiddleware)
	return rg
}
