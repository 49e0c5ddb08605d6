// Package docs registers the OpenAPI description served under /swagger.
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
	"paths": {
		"/register/": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Account data",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.RegisterRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.DetailResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ValidationErrorResponse"
						}
					}
				}
			}
		},
		"/login/": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Login",
				"description": "Sets HTTP-only access_token and refresh_token cookies.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Credentials",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.LoginResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ValidationErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/logout/": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Logout",
				"security": [
					{
						"CookieAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.DetailResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/token/refresh/": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Refresh access token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.RefreshResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/createQuiz/": {
			"post": {
				"tags": [
					"quiz"
				],
				"summary": "Create a quiz from a video",
				"security": [
					{
						"CookieAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Video URL",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateQuizRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.QuizResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"504": {
						"description": "Gateway Timeout",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/quizzes/": {
			"get": {
				"tags": [
					"quiz"
				],
				"summary": "List own quizzes",
				"security": [
					{
						"CookieAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.QuizResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/quizzes/{id}/": {
			"get": {
				"tags": [
					"quiz"
				],
				"summary": "Get a quiz",
				"security": [
					{
						"CookieAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Quiz ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.QuizResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"tags": [
					"quiz"
				],
				"summary": "Update a quiz",
				"security": [
					{
						"CookieAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Quiz ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Fields to change",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.UpdateQuizRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.QuizResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ValidationErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"quiz"
				],
				"summary": "Delete a quiz",
				"security": [
					{
						"CookieAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Quiz ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"dto.RegisterRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"dto.LoginRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"dto.UserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"email": {
					"type": "string"
				}
			}
		},
		"dto.LoginResponse": {
			"type": "object",
			"properties": {
				"detail": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/dto.UserResponse"
				}
			}
		},
		"dto.DetailResponse": {
			"type": "object",
			"properties": {
				"detail": {
					"type": "string"
				}
			}
		},
		"dto.RefreshResponse": {
			"type": "object",
			"properties": {
				"detail": {
					"type": "string"
				},
				"access": {
					"type": "string"
				}
			}
		},
		"dto.CreateQuizRequest": {
			"type": "object",
			"properties": {
				"url": {
					"type": "string"
				}
			}
		},
		"dto.UpdateQuizRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				}
			}
		},
		"dto.QuestionResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"question_title": {
					"type": "string"
				},
				"question_options": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"answer": {
					"type": "string"
				}
			}
		},
		"dto.QuizResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				},
				"video_url": {
					"type": "string"
				},
				"questions": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.QuestionResponse"
					}
				}
			}
		},
		"dto.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				}
			}
		},
		"middleware.ErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"status": {
					"type": "integer"
				},
				"details": {
					"type": "object",
					"additionalProperties": true
				}
			}
		},
		"middleware.ValidationErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"status": {
					"type": "integer"
				},
				"errors": {
					"type": "object",
					"additionalProperties": {
						"type": "array",
						"items": {
							"type": "string"
						}
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"CookieAuth": {
			"type": "apiKey",
			"name": "access_token",
			"in": "cookie"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8090",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Video Quiz API",
	Description:      "Turns a video URL into a multiple-choice quiz. Authentication uses HTTP-only JWT cookies.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
