// Package docs notely API
//
// @title  notely API
// @version 0.1.0
// @description Notes, calendar and reminders with free, pro and premium plans.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
package docs

import (
	_ "notely/cmd/server/handlers/httperr"
	_ "notely/internal/services/calendar"
	_ "notely/internal/services/entitlements"
	_ "notely/internal/services/notes"
	_ "notely/internal/services/profiles"

	"github.com/swaggo/swag"
)

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
	"paths": {
		"/auth/sign-up": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Bad Request"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/auth/sign-in": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Authenticate a user",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"429": {
						"description": "Too Many Requests"
					}
				}
			}
		},
		"/auth/sign-out": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Sign out",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized"
					}
				}
			}
		},
		"/me": {
			"get": {
				"tags": [
					"me"
				],
				"summary": "Get current profile",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized"
					}
				}
			},
			"patch": {
				"tags": [
					"me"
				],
				"summary": "Update current profile",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					}
				}
			}
		},
		"/me/entitlements": {
			"get": {
				"tags": [
					"me"
				],
				"summary": "Current entitlements",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized"
					}
				}
			}
		},
		"/notes": {
			"post": {
				"tags": [
					"notes"
				],
				"summary": "Create a new note",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Bad Request"
					},
					"402": {
						"description": "Payment Required"
					}
				}
			},
			"get": {
				"tags": [
					"notes"
				],
				"summary": "List notes newest first, filtered by tags and a search query",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/notes/{id}": {
			"get": {
				"tags": [
					"notes"
				],
				"summary": "Get a note",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found"
					}
				}
			},
			"patch": {
				"tags": [
					"notes"
				],
				"summary": "Update a note",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"402": {
						"description": "Payment Required"
					},
					"404": {
						"description": "Not Found"
					}
				}
			},
			"delete": {
				"tags": [
					"notes"
				],
				"summary": "Delete a note",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/notes/{id}/todos/{todoID}/toggle": {
			"post": {
				"tags": [
					"notes"
				],
				"summary": "Toggle a todo item",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "todoID",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/calendar/month": {
			"get": {
				"tags": [
					"calendar"
				],
				"summary": "Month view",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					}
				}
			}
		},
		"/calendar/day": {
			"get": {
				"tags": [
					"calendar"
				],
				"summary": "Day view",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					}
				}
			}
		},
		"/calendar/export.ics": {
			"get": {
				"tags": [
					"calendar"
				],
				"summary": "Export calendar",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/calendar/events": {
			"post": {
				"tags": [
					"calendar"
				],
				"summary": "Create a calendar event",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Bad Request"
					}
				}
			},
			"get": {
				"tags": [
					"calendar"
				],
				"summary": "List calendar events",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/calendar/events/{id}": {
			"patch": {
				"tags": [
					"calendar"
				],
				"summary": "Update a calendar event",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				}
			},
			"delete": {
				"tags": [
					"calendar"
				],
				"summary": "Delete a calendar event",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/calendar/events/{id}/reminders": {
			"get": {
				"tags": [
					"calendar"
				],
				"summary": "Reminders of an event",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/calendar/reminders": {
			"post": {
				"tags": [
					"calendar"
				],
				"summary": "Create a reminder",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Bad Request"
					},
					"402": {
						"description": "Payment Required"
					}
				}
			},
			"get": {
				"tags": [
					"calendar"
				],
				"summary": "List reminders",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/calendar/reminders/{id}/complete": {
			"post": {
				"tags": [
					"calendar"
				],
				"summary": "Complete a reminder",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/calendar/reminders/{id}": {
			"delete": {
				"tags": [
					"calendar"
				],
				"summary": "Delete a reminder",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/billing/products": {
			"get": {
				"tags": [
					"billing"
				],
				"summary": "List products",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/billing/purchase": {
			"post": {
				"tags": [
					"billing"
				],
				"summary": "Purchase a plan",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Bad Request"
					},
					"402": {
						"description": "Payment Required"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/billing/history": {
			"get": {
				"tags": [
					"billing"
				],
				"summary": "Purchase history",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"Bearer": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"Bearer": {
			"description": "Type \"Bearer\" followed by a space and the session token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds the general API information served at /docs/doc.json.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "notely API",
	Description:      "Notes, calendar and reminders with free, pro and premium plans.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
