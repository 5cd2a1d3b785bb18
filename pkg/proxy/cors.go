// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import "net/http"

// CORS response header names.
const (
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderAllowCredentials = "Access-Control-Allow-Credentials"
)

// corsHeaders is the fixed policy attached to every non-static response.
var corsHeaders = [...]struct {
	key   string
	value string
}{
	{HeaderAllowOrigin, "*"},
	{HeaderAllowMethods, "*"},
	{HeaderAllowHeaders, "*"},
	{HeaderAllowCredentials, "true"},
}

// setCORSHeaders overwrites the CORS keys in h, replacing any upstream values.
func setCORSHeaders(h http.Header) {
	for _, c := range corsHeaders {
		h.Set(c.key, c.value)
	}
}
