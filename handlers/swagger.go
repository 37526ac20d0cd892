package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>diggingboard — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the main endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "diggingboard", "version": "v0.1.0" },
  "paths": {
    "/api/v1/auth/signup": {
      "post": { "summary": "Create account (name + 4-digit PIN)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"pin":{"type":"string"}}}}}}, "responses": { "201": { "description": "tokens returned" }, "409": { "description": "name taken" } } }
    },
    "/api/v1/auth/login": {
      "post": { "summary": "Login with name + PIN", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"pin":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid name or pin" } } }
    },
    "/api/v1/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/v1/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/posts": {
      "get": { "summary": "List music posts with rating aggregates", "responses": { "200": { "description": "posts" } } },
      "post": { "summary": "Create a music post", "responses": { "201": { "description": "created" } } }
    },
    "/api/v1/community/posts": {
      "get": { "summary": "List community posts", "responses": { "200": { "description": "posts" } } },
      "post": { "summary": "Create a community post", "responses": { "201": { "description": "created" } } }
    },
    "/api/v1/community/posts/{id}/vote": {
      "put": { "summary": "Set recommendation to 0 or 1 (authenticated)", "responses": { "200": { "description": "current value" } } }
    },
    "/api/v1/manage-content": {
      "post": { "summary": "Authorize and apply a content mutation", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"action":{"type":"string"},"table":{"type":"string"},"id":{"type":"string"},"payload":{"type":"object"}}}}}}, "responses": { "200": { "description": "success" }, "400": { "description": "invalid request" }, "401": { "description": "unauthorized" } } }
    },
    "/api/v1/tracks/search": {
      "get": { "summary": "Search the music catalog", "responses": { "200": { "description": "tracks" } } }
    },
    "/api/v1/images": {
      "post": { "summary": "Upload an image", "responses": { "201": { "description": "key and url" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
