package models

import (
	"net/http"
	"strings"
)

// ProblemTypeBase prefixes the type URI of every problem document.
const ProblemTypeBase = "https://pollnow.dev/problems/"

// APIProblem represents an RFC 7807 Problem Details response. Handlers write
// it directly and embed it in richer problem documents; swagger annotations
// reference it for error responses.
type APIProblem struct {
	Type     string `json:"type" example:"https://pollnow.dev/problems/bad-request"`
	Title    string `json:"title" example:"Bad Request"`
	Status   int    `json:"status" example:"400"`
	Detail   string `json:"detail,omitempty" example:"ids must not be empty"`
	Instance string `json:"instance,omitempty" example:"/api/v1/pulse/execute"`
}

// NewProblem builds a problem for an HTTP status. The type URI and title are
// derived from the status text.
func NewProblem(status int, detail, instance string) APIProblem {
	return APIProblem{
		Type:     ProblemTypeFor(status),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// ProblemTypeFor returns the type URI for an HTTP status, e.g.
// ".../problems/service-unavailable" for 503.
func ProblemTypeFor(status int) string {
	slug := strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "-")
	if slug == "" {
		slug = "about-blank"
	}
	return ProblemTypeBase + slug
}
