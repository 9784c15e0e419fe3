package generator

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	openapi "github.com/go-openapi/spec"
)

type SwaggerGenerator struct {
	info    DocInfo
	schemas *SchemaGenerator
}

func NewSwaggerGenerator(info DocInfo) *SwaggerGenerator {
	if info.Version == "" {
		info.Version = "1.0"
	}
	return &SwaggerGenerator{
		info:    info,
		schemas: NewSchemaGenerator(),
	}
}

// EmitOpenAPIDefinition builds the document for routes keyed by
// "METHOD~path", the path in echo notation.
func (s *SwaggerGenerator) EmitOpenAPIDefinition(routesMap map[string]RouteInfo) (openapi.Swagger, error) {
	sw := openapi.Swagger{}
	sw.Swagger = "2.0"
	sw.Info = &openapi.Info{}
	sw.Info.Title = s.info.Title
	sw.Info.Description = s.info.Description
	sw.Info.Version = s.info.Version
	sw.Paths = &openapi.Paths{
		Paths: make(map[string]openapi.PathItem),
	}

	keys := make([]string, 0, len(routesMap))
	for key := range routesMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		routeInfo := routesMap[key]
		path := key
		if _, p, ok := strings.Cut(key, "~"); ok {
			path = p
		}
		op := &openapi.Operation{}
		op.Tags = append(op.Tags, routeInfo.Tags...)
		op.Summary = routeInfo.Parameters.Summary
		op.Description = routeInfo.Parameters.Description
		sPath := s.pathParamsProcessor(op, path)
		if routeInfo.Handler.RequestType != nil {
			reqType := *routeInfo.Handler.RequestType
			switch routeInfo.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				s.queryParamsProcessor(op, reqType, true)
				s.bodyParamsProcessor(op, routeInfo)
			default:
				s.queryParamsProcessor(op, reqType, false)
			}
		}
		s.responseProcessor(op, routeInfo)

		pi := sw.Paths.Paths[sPath]
		switch routeInfo.Method {
		case http.MethodPost:
			pi.Post = op
		case http.MethodPatch:
			pi.Patch = op
		case http.MethodPut:
			pi.Put = op
		case http.MethodGet:
			pi.Get = op
		case http.MethodDelete:
			pi.Delete = op
		case http.MethodHead:
			pi.Head = op
		case http.MethodOptions:
			pi.Options = op
		default:
			return openapi.Swagger{}, fmt.Errorf("route %s: unsupported method %s", path, routeInfo.Method)
		}
		sw.Paths.Paths[sPath] = pi
	}

	defs, err := s.schemas.Definitions()
	if err != nil {
		return openapi.Swagger{}, fmt.Errorf("cannot process definitions: %w", err)
	}
	sw.Definitions = defs
	return sw, nil
}
