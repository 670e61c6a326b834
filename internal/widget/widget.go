// Package widget renders the embeddable display script. The script is
// embedded at build time and bound to the deployment's public API base URL
// when the server starts.
package widget

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"strings"
)

//go:embed widget.js
var source []byte

const apiBasePlaceholder = "__TESTIFY_API_BASE__"

// Script is a rendered widget ready to be served.
type Script struct {
	body []byte
	etag string
}

// Render binds the widget to apiBaseURL, the absolute (or host-relative)
// URL under which /public/{ownerId}/testimonials is served.
func Render(apiBaseURL string) *Script {
	lit, _ := json.Marshal(strings.TrimRight(apiBaseURL, "/"))
	body := bytes.Replace(source, []byte(apiBasePlaceholder), lit, 1)
	sum := sha256.Sum256(body)
	return &Script{
		body: body,
		etag: `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

// Bytes returns the script source.
func (s *Script) Bytes() []byte { return s.body }

// ETag returns a strong validator for the script body.
func (s *Script) ETag() string { return s.etag }
