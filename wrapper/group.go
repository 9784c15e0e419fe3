package wrapper

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/labstack/echo/v4"
)

func (g *WrapGroup) Group(prefix string, tag string, m ...echo.MiddlewareFunc) *WrapGroup {
	group := &WrapGroup{
		echoGroup:      g.echoGroup.Group(prefix, m...),
		path:           g.path + prefix,
		routesHandlers: make(map[string]generator.RouteInfo),
		tags:           []string{tag},
		childGroups:    make(map[string]*WrapGroup),
	}
	g.childGroups[prefix] = group
	return group
}

func (g *WrapGroup) POST(path string, params generator.HandlerParameters, handler interface{}, m ...echo.MiddlewareFunc) (*echo.Route, error) {
	return g.add(http.MethodPost, path, params, handler, true, m...)
}

func (g *WrapGroup) PUT(path string, params generator.HandlerParameters, handler interface{}, m ...echo.MiddlewareFunc) (*echo.Route, error) {
	return g.add(http.MethodPut, path, params, handler, true, m...)
}

func (g *WrapGroup) PATCH(path string, params generator.HandlerParameters, handler interface{}, m ...echo.MiddlewareFunc) (*echo.Route, error) {
	return g.add(http.MethodPatch, path, params, handler, true, m...)
}

func (g *WrapGroup) GET(path string, params generator.HandlerParameters, handler interface{}, m ...echo.MiddlewareFunc) (*echo.Route, error) {
	return g.add(http.MethodGet, path, params, handler, false, m...)
}

func (g *WrapGroup) DELETE(path string, params generator.HandlerParameters, handler interface{}, m ...echo.MiddlewareFunc) (*echo.Route, error) {
	return g.add(http.MethodDelete, path, params, handler, false, m...)
}

// add checks the handler signature, records it for the API document and
// mounts it on the echo group.
func (g *WrapGroup) add(method, path string, params generator.HandlerParameters, handler interface{}, processBody bool, m ...echo.MiddlewareFunc) (*echo.Route, error) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	handlerInfo, err := processHandler(handler)
	if err != nil {
		return nil, fmt.Errorf("%s %s%s: %w", method, g.path, path, err)
	}
	fullPath := g.path + path
	routeInfo := generator.RouteInfo{
		Method:     method,
		Handler:    handlerInfo,
		Tags:       g.tags,
		Parameters: params,
	}
	handlerKey := fmt.Sprintf("%s~%s", routeInfo.Method, fullPath)
	g.routesHandlers[handlerKey] = routeInfo
	echoHandler := g.callProcessor(fullPath, handler, processBody)
	return g.echoGroup.Add(method, path, echoHandler, m...), nil
}

func (g *WrapGroup) getRoutes() map[string]generator.RouteInfo {
	routes := make(map[string]generator.RouteInfo)
	for _, group := range g.childGroups {
		for path, routeInfo := range group.getRoutes() {
			routes[path] = routeInfo
		}
	}
	for path, routeInfo := range g.routesHandlers {
		routes[path] = routeInfo
	}
	return routes
}
