package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Group declares the routes of one area of the API (inventory, sales, ...)
// before they are mounted. Middleware added with Use applies to the group
// and every subgroup.
type Group struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*Group
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// Route is a mounted method and absolute path
type Route struct {
	Group  string
	Method string
	Path   string
}

// NewGroup creates a group mounted at prefix
func NewGroup(name, prefix string) *Group {
	return &Group{name: name, prefix: prefix}
}

// Use adds middleware to the group
func (g *Group) Use(mw ...gin.HandlerFunc) *Group {
	g.middleware = append(g.middleware, mw...)
	return g
}

// Group creates a subgroup below g
func (g *Group) Group(name, prefix string) *Group {
	child := NewGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

func (g *Group) GET(p string, h ...gin.HandlerFunc) *Group  { return g.add(http.MethodGet, p, h) }
func (g *Group) POST(p string, h ...gin.HandlerFunc) *Group { return g.add(http.MethodPost, p, h) }
func (g *Group) PUT(p string, h ...gin.HandlerFunc) *Group  { return g.add(http.MethodPut, p, h) }

func (g *Group) add(method, p string, handlers []gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: p, handlers: handlers})
	return g
}

// mount registers the group on parent and returns what it mounted
func (g *Group) mount(parent *gin.RouterGroup) []Route {
	rg := parent.Group(g.prefix, g.middleware...)
	mounted := make([]Route, 0, len(g.routes))
	for _, r := range g.routes {
		rg.Handle(r.method, r.path, r.handlers...)
		mounted = append(mounted, Route{Group: g.name, Method: r.method, Path: joinPath(rg.BasePath(), r.path)})
	}
	for _, child := range g.children {
		mounted = append(mounted, child.mount(rg)...)
	}
	return mounted
}

// Mount registers every group under /api/<version>
func Mount(engine *gin.Engine, version string, groups ...*Group) []Route {
	api := engine.Group("/api/" + version)
	var mounted []Route
	for _, g := range groups {
		mounted = append(mounted, g.mount(api)...)
	}
	return mounted
}

func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	return path.Join(base, rel)
}
