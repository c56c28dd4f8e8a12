// Package docs holds the OpenAPI description served at /docs/.
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
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Process liveness",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange username and password for a bearer token",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Return the authenticated user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        },
        "/api/es/index": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Elasticsearch"],
                "summary": "Index a document",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.IndexDocumentRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/es/search": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Elasticsearch"],
                "summary": "Search an index",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SearchRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/es/create-index": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Elasticsearch"],
                "summary": "Create an index if it does not exist",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateIndexRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/es/delete-index/{index_name}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Elasticsearch"],
                "summary": "Delete an index if it exists",
                "parameters": [{"type": "string", "name": "index_name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/es/delete": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Elasticsearch"],
                "summary": "Delete documents by id or query",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DeleteDocumentsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/es/health": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Elasticsearch"],
                "summary": "Elasticsearch cluster health",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/vector/add": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Vector"],
                "summary": "Add documents to the vector store",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AddDocumentsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/vector/query": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Vector"],
                "summary": "Similarity search in the vector store",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.QueryDocumentsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/vector/delete": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Vector"],
                "summary": "Delete documents from the vector store",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RemoveDocumentsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/vector/create-collection": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Vector"],
                "summary": "Create a collection if it does not exist",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateCollectionRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/vector/health": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Vector"],
                "summary": "Vector store heartbeat",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        },
        "/api/chat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Chat"],
                "summary": "Ask the insurance advisor model",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChatRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}}
            }
        }
    },
    "definitions": {
        "utils.Payload": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "handlers.RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handlers.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "handlers.IndexDocumentRequest": {
            "type": "object",
            "properties": {
                "index": {"type": "string"},
                "document": {"type": "object"},
                "doc_id": {"type": "string"}
            }
        },
        "handlers.SearchRequest": {
            "type": "object",
            "properties": {
                "index": {"type": "string"},
                "query": {"type": "object"},
                "size": {"type": "integer"},
                "from_": {"type": "integer"}
            }
        },
        "handlers.CreateIndexRequest": {
            "type": "object",
            "properties": {
                "index": {"type": "string"},
                "mappings": {"type": "object"},
                "settings": {"type": "object"}
            }
        },
        "handlers.DeleteDocumentsRequest": {
            "type": "object",
            "properties": {
                "index": {"type": "string"},
                "ids": {"type": "array", "items": {"type": "string"}},
                "query": {"type": "object"}
            }
        },
        "handlers.AddDocumentsRequest": {
            "type": "object",
            "properties": {
                "collection": {"type": "string"},
                "documents": {"type": "array", "items": {"type": "string"}},
                "metadatas": {"type": "array", "items": {"type": "object"}},
                "ids": {"type": "array", "items": {"type": "string"}},
                "embeddings": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}}
            }
        },
        "handlers.QueryDocumentsRequest": {
            "type": "object",
            "properties": {
                "collection": {"type": "string"},
                "query_texts": {"type": "array", "items": {"type": "string"}},
                "query_embeddings": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}},
                "n_results": {"type": "integer"},
                "offset": {"type": "integer"},
                "where": {"type": "object"}
            }
        },
        "handlers.RemoveDocumentsRequest": {
            "type": "object",
            "properties": {
                "collection": {"type": "string"},
                "ids": {"type": "array", "items": {"type": "string"}},
                "where": {"type": "object"}
            }
        },
        "handlers.CreateCollectionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "metadata": {"type": "object"}
            }
        },
        "handlers.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "history": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "user": {"type": "string"},
                            "assistant": {"type": "string"}
                        }
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "InsurGuide API",
	Description:      "Accounts, Elasticsearch search, vector store and advisor chat behind bearer-token auth.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
