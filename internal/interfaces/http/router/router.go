package router

import (
	"net/http"
	"path"
	"sort"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar attaches routes below a parent group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouteInfo describes one registered route. Path is relative to the group
// the routes were described from.
type RouteInfo struct {
	Method string
	Path   string
	Group  string
}

// API is the versioned /api/<version> tree
type API struct {
	version    string
	middleware []gin.HandlerFunc
	groups     []RouteRegistrar
}

// NewAPI creates an empty API tree for the given version, "v1" when empty
func NewAPI(version string) *API {
	if version == "" {
		version = "v1"
	}
	return &API{version: version}
}

// Prefix returns the URL prefix of the tree
func (a *API) Prefix() string {
	return "/api/" + a.version
}

// Use adds middleware that runs before every route of the tree
func (a *API) Use(middleware ...gin.HandlerFunc) *API {
	a.middleware = append(a.middleware, middleware...)
	return a
}

// Mount queues groups for installation
func (a *API) Mount(groups ...RouteRegistrar) *API {
	a.groups = append(a.groups, groups...)
	return a
}

// Install registers the tree on r and returns the versioned group
func (a *API) Install(r gin.IRouter) *gin.RouterGroup {
	api := r.Group(a.Prefix(), a.middleware...)
	for _, g := range a.groups {
		g.RegisterRoutes(api)
	}
	return api
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// Group is a named set of routes sharing a prefix and middleware. Groups nest.
type Group struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*Group
}

// NewGroup creates a route group; an empty prefix mounts routes on the parent path
func NewGroup(name, prefix string) *Group {
	return &Group{name: name, prefix: prefix}
}

// Name returns the group name
func (g *Group) Name() string { return g.name }

// Prefix returns the group prefix
func (g *Group) Prefix() string { return g.prefix }

// Use adds middleware to the group and its children
func (g *Group) Use(middleware ...gin.HandlerFunc) *Group {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// GET adds a GET route
func (g *Group) GET(p string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, p, handlers...)
}

// POST adds a POST route
func (g *Group) POST(p string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, p, handlers...)
}

// Handle adds a route for an arbitrary method
func (g *Group) Handle(method, p string, handlers ...gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: p, handlers: handlers})
	return g
}

// Child creates a nested group
func (g *Group) Child(name, prefix string) *Group {
	child := NewGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

// RegisterRoutes implements RouteRegistrar
func (g *Group) RegisterRoutes(rg *gin.RouterGroup) {
	target := rg.Group(g.prefix, g.middleware...)
	for _, r := range g.routes {
		target.Handle(r.method, r.path, r.handlers...)
	}
	for _, child := range g.children {
		child.RegisterRoutes(target)
	}
}

// Routes lists the routes of the group and its children, sorted by path then method
func (g *Group) Routes() []RouteInfo {
	var out []RouteInfo
	g.collect("/", &out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (g *Group) collect(base string, out *[]RouteInfo) {
	base = path.Join(base, g.prefix)
	for _, r := range g.routes {
		*out = append(*out, RouteInfo{Method: r.method, Path: path.Join(base, r.path), Group: g.name})
	}
	for _, child := range g.children {
		child.collect(base, out)
	}
}
