package wrapper

import (
	"encoding/json"
	"sync"

	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/swaggo/swag"
)

// RouteWrapper mounts typed handlers on an echo router and remembers them
// for the API document.
type RouteWrapper struct {
	router *echo.Echo
	groups []*WrapGroup
}

func NewRouter(router *echo.Echo) *RouteWrapper {
	return &RouteWrapper{
		router: router,
		groups: make([]*WrapGroup, 0),
	}
}

func (s *RouteWrapper) Group(prefix string, tag string, m ...echo.MiddlewareFunc) *WrapGroup {
	group := &WrapGroup{
		echoGroup:      s.router.Group(prefix, m...),
		path:           prefix,
		routesHandlers: make(map[string]generator.RouteInfo),
		tags:           []string{tag},
		childGroups:    make(map[string]*WrapGroup),
	}
	s.groups = append(s.groups, group)
	return group
}

func (s *RouteWrapper) getRoutes() map[string]generator.RouteInfo {
	routes := make(map[string]generator.RouteInfo)
	for _, group := range s.groups {
		for path, routeInfo := range group.getRoutes() {
			routes[path] = routeInfo
		}
	}
	return routes
}

// GenerateSwagger builds the document of every registered route and
// registers it with swag so the swagger UI handler serves it.
func (s *RouteWrapper) GenerateSwagger(info generator.DocInfo) ([]byte, error) {
	gen := generator.NewSwaggerGenerator(info)
	swagSpec, err := gen.EmitOpenAPIDefinition(s.getRoutes())
	if err != nil {
		return nil, errors.Wrap(err, "cannot emit swagger definition")
	}
	jsonBytes, err := json.MarshalIndent(swagSpec, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal swagger annotation")
	}
	s.registerDefinition(string(jsonBytes))
	return jsonBytes, nil
}

// swagDoc is the document served by swag. swag.Register panics on a second
// registration, so it is registered once and replaced on later calls.
type swagDoc struct {
	mu  sync.RWMutex
	doc string
}

func (d *swagDoc) ReadDoc() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc
}

var (
	registeredDoc  = &swagDoc{}
	registerDocOne sync.Once
)

func (s *RouteWrapper) registerDefinition(template string) {
	registeredDoc.mu.Lock()
	registeredDoc.doc = template
	registeredDoc.mu.Unlock()
	registerDocOne.Do(func() {
		swag.Register(swag.Name, registeredDoc)
	})
}
