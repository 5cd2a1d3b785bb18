// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package proxy provides the gateway HTTP handler. It answers the canned
// static paths and CORS preflights locally, forwards every path that matches
// a configured prefix to its upstream API, and streams the upstream response
// back chunk by chunk with permissive CORS headers attached.
package proxy
