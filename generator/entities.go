package generator

import "reflect"

// DocInfo fills the info block of the generated document.
type DocInfo struct {
	Title       string
	Description string
	Version     string
}

type HandlerInfo struct {
	RequestType *reflect.Type
	OutputType  *reflect.Type
	FileUpload  []FileUploadParameters
}

type FileUploadParameters struct {
	Name          string
	jsonName      string
	MultipleFiles bool
}

type HandlerParameters struct {
	Summary     string
	Description string
	FileUpload  []FileUploadParameters
	// Errors documents the non 200 status codes a handler answers with.
	Errors map[int]string
}

type RouteInfo struct {
	Method     string
	Tags       []string
	Handler    HandlerInfo
	Parameters HandlerParameters
}

type fieldInfo struct {
	Name     string
	JSONName string
	In       string
}
