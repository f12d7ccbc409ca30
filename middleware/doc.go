// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("POST /vote", middleware.WithLogging(handler))

Each request gets an X-Request-ID (kept if the client sent one) that is
echoed in the response and attached to the start and completion log lines.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins, mux),
	}

Built on rs/cors. With an allowlist, credentials are allowed; without one,
any origin is accepted without credentials.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

DecodeAndValidate parses a body and applies its validate tags, returning a
message that is safe to show the client:

	var req models.VoterLoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used as the origin in authentication audit logs.
*/
package middleware
