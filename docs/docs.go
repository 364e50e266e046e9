// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session token as 'Bearer <token>'. The JWT header is also accepted.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/users/register": {"post": {"tags": ["users"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/users/login": {"post": {"tags": ["users"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/users/token-refresh": {"post": {"tags": ["users"], "summary": "Refresh a session token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/users": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List visible users", "responses": {"200": {"description": "OK"}}}},
        "/users/{userID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get a visible user", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update a user profile", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete a user", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/spaces": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "List spaces", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Create a space", "responses": {"201": {"description": "Created"}}}
        },
        "/spaces/join": {"post": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Join a space", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/spaces/{spaceID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Get a space", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Update a space", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Delete a space", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/spaces/{spaceID}/leave": {"post": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Leave a space", "responses": {"200": {"description": "OK"}}}},
        "/spaces/{spaceID}/invite-code": {"post": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Regenerate a space's invite code", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/rooms": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["rooms"], "summary": "List rooms", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["rooms"], "summary": "Create a room", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/rooms/{roomID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["rooms"], "summary": "Get a room", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["rooms"], "summary": "Update a room", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["rooms"], "summary": "Delete a room", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/bookings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["bookings"], "summary": "List bookings", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["bookings"], "summary": "Create a booking", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/bookings/room": {"get": {"security": [{"BearerAuth": []}], "tags": ["bookings"], "summary": "List booked ranges per room", "responses": {"200": {"description": "OK"}}}},
        "/bookings/available-time-slots": {"get": {"security": [{"BearerAuth": []}], "tags": ["bookings"], "summary": "Free time slots and occupancy", "responses": {"200": {"description": "OK"}}}},
        "/bookings/{bookingID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["bookings"], "summary": "Get a booking", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["bookings"], "summary": "Update a booking", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["bookings"], "summary": "Delete a booking", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Roombook API",
	Description:      "Multi-tenant room booking: spaces, rooms, bookings, and availability.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
