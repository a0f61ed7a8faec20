// Package docs is generated by swag from the handler annotations. Regenerate with
// swag init -g cmd/api/main.go -o docs
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
        "/auth/callback": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Sign in with a Google ID token",
                "parameters": [
                    {"description": "Google ID token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AuthCallbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionUserDTO"}},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "403": {"description": "Awaiting approval", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Get current authenticated user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionUserDTO"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/quotations": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "List quotations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.QuotationSummaryDTO"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Create quotation",
                "parameters": [
                    {"description": "Quotation data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.SaveQuotationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.IDResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "500": {"description": "Persistence failure", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/quotations/{id}": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Get quotation",
                "parameters": [{"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuotationDTO"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Update quotation",
                "parameters": [
                    {"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true},
                    {"description": "Quotation data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.SaveQuotationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Delete quotation",
                "parameters": [{"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/quotations/{id}/copy": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Copy quotation",
                "parameters": [{"type": "string", "description": "Source quotation ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.IDResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/quotations/{id}/export": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Quotations"],
                "summary": "Export quotation",
                "parameters": [{"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "No tab selected for printing", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/uploads": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Uploads"],
                "summary": "Upload image",
                "description": "Stores one png, jpeg, gif or webp image and returns the path under which it is served",
                "parameters": [{"type": "file", "description": "File to upload", "name": "file", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UploadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "502": {"description": "Upload failed", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/users/{id}/approval": {
            "put": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Approve or revoke a user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Approval state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SetApprovalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionUserDTO"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "integer"},
                "title": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "domain.AuthCallbackRequest": {
            "type": "object",
            "required": ["idToken"],
            "properties": {"idToken": {"type": "string"}}
        },
        "domain.IDResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}}
        },
        "domain.SuccessResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "domain.UploadResponse": {
            "type": "object",
            "properties": {"path": {"type": "string"}}
        },
        "domain.SessionUserDTO": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "isApproved": {"type": "boolean"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["USER", "ADMIN"]}
            }
        },
        "domain.LineItemRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string", "maxLength": 200},
                "name": {"type": "string", "maxLength": 500},
                "quantity": {"type": "number", "minimum": 0},
                "remarks": {"type": "string"},
                "section": {"type": "string", "maxLength": 64},
                "spec": {"type": "string", "maxLength": 500},
                "unit": {"type": "string", "maxLength": 50},
                "unitPrice": {"type": "number", "minimum": 0}
            }
        },
        "domain.LineItemDTO": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "name": {"type": "string"},
                "quantity": {"type": "number"},
                "remarks": {"type": "string"},
                "section": {"type": "string"},
                "sortOrder": {"type": "integer"},
                "spec": {"type": "string"},
                "supplyPrice": {"type": "number"},
                "unit": {"type": "string"},
                "unitPrice": {"type": "number"}
            }
        },
        "domain.SaveQuotationRequest": {
            "type": "object",
            "required": ["customerName", "title"],
            "properties": {
                "customerName": {"type": "string", "maxLength": 255},
                "customerRef": {"type": "string", "maxLength": 255},
                "grandTotal": {"type": "number"},
                "imageComponent": {"type": "string", "maxLength": 500},
                "imageLayout": {"type": "string", "maxLength": 500},
                "imageMaintenance": {"type": "string", "maxLength": 500},
                "imageSchedule": {"type": "string", "maxLength": 500},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.LineItemRequest"}},
                "memo": {"type": "string"},
                "quotationDate": {"type": "string"},
                "title": {"type": "string", "maxLength": 255},
                "totalAmount": {"type": "number"},
                "vat": {"type": "number"}
            }
        },
        "domain.QuotationDTO": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "customerName": {"type": "string"},
                "customerRef": {"type": "string"},
                "editorId": {"type": "string"},
                "editorName": {"type": "string"},
                "grandTotal": {"type": "number"},
                "id": {"type": "string"},
                "imageComponent": {"type": "string"},
                "imageLayout": {"type": "string"},
                "imageMaintenance": {"type": "string"},
                "imageSchedule": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.LineItemDTO"}},
                "memo": {"type": "string"},
                "quotationDate": {"type": "string"},
                "title": {"type": "string"},
                "totalAmount": {"type": "number"},
                "updatedAt": {"type": "string"},
                "vat": {"type": "number"}
            }
        },
        "domain.QuotationSummaryDTO": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "customerName": {"type": "string"},
                "customerRef": {"type": "string"},
                "editorName": {"type": "string"},
                "grandTotal": {"type": "number"},
                "id": {"type": "string"},
                "quotationDate": {"type": "string"},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.SetApprovalRequest": {
            "type": "object",
            "required": ["approved"],
            "properties": {"approved": {"type": "boolean"}}
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "x-api-key", "in": "header"},
        "BearerAuth": {"description": "Google ID token: Bearer {token}", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Quotation API",
	Description:      "Quotation management: documents, line items, tabs, uploads and xlsx export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
