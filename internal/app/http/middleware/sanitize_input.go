package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// Secrets are compared byte for byte later, so they are never rewritten.
// Return URLs are checked against SITE_URL by their handler instead.
var unsanitized = map[string]bool{
	"password":         true,
	"confirm_password": true,
	"old_password":     true,
	"new_password":     true,
	"token":            true,
	"success_url":      true,
	"cancel_url":       true,
}

// maxCleanPasses bounds how often entity-encoded markup is re-stripped.
const maxCleanPasses = 3

// clean strips tags but leaves plain text as typed: bluemonday entity-escapes
// its output (& becomes &amp;), which would corrupt URLs and names downstream.
// Unescaping can surface markup that was sent entity-encoded, so the value is
// re-stripped until it stops changing.
func clean(policy *bluemonday.Policy, s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		out := html.UnescapeString(policy.Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}
	return policy.Sanitize(s)
}

// SanitizeAndCleanInputMiddleware strips markup from top-level string fields
// of JSON bodies.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body map[string]interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		for k, v := range body {
			if str, ok := v.(string); ok && !unsanitized[k] {
				body[k] = clean(policy, str)
			}
		}

		newBody, _ := json.Marshal(body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}
