// Package docs holds the OpenAPI description served at /swagger.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "API information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.InfoResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/extract-bill-data": {
            "post": {
                "description": "Download the document, transcribe it and extract the billed line items page by page.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Extract line items from a bill document",
                "parameters": [
                    {
                        "description": "Document URL (http, https or s3)",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.ExtractRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Extracted line items", "schema": {"$ref": "#/definitions/domain.BillExtractionResponse"}},
                    "400": {"description": "Invalid request or document URL", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "Document too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "415": {"description": "Unsupported document type", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "502": {"description": "Download failed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/api/v1/extract/text": {
            "post": {
                "description": "Run the extraction pipeline on already transcribed bill text.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Extract line items from OCR text",
                "parameters": [
                    {
                        "description": "OCR text",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.ExtractTextRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Extracted line items", "schema": {"$ref": "#/definitions/domain.BillExtractionResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/api/v1/extract/debug": {
            "post": {
                "description": "Return the per-line classification, parsing and validation decisions along with the final response.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Trace the extraction of OCR text",
                "parameters": [
                    {
                        "description": "OCR text",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.ExtractTextRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Extraction trace", "schema": {"type": "object"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/api/v1/stats": {
            "get": {
                "description": "Request counters and the running mean confidence since the process started.",
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Get extraction statistics",
                "responses": {
                    "200": {"description": "Aggregate statistics", "schema": {"$ref": "#/definitions/domain.Stats"}}
                }
            }
        }
    },
    "definitions": {
        "domain.LineItem": {
            "type": "object",
            "properties": {
                "item_name": {"type": "string", "example": "Livi 300ng Tab"},
                "item_amount": {"type": "number", "example": 448},
                "item_rate": {"type": "number", "example": 32},
                "item_quantity": {"type": "number", "example": 14}
            }
        },
        "domain.PageItems": {
            "type": "object",
            "properties": {
                "page_no": {"type": "string", "example": "1"},
                "bill_items": {"type": "array", "items": {"$ref": "#/definitions/domain.LineItem"}}
            }
        },
        "domain.BillData": {
            "type": "object",
            "properties": {
                "pagewise_line_items": {"type": "array", "items": {"$ref": "#/definitions/domain.PageItems"}},
                "total_item_count": {"type": "integer", "example": 3},
                "reconciled_amount": {"type": "number", "example": 1560.95}
            }
        },
        "domain.BillExtractionResponse": {
            "type": "object",
            "properties": {
                "is_success": {"type": "boolean", "example": true},
                "data": {"$ref": "#/definitions/domain.BillData"},
                "error": {"type": "string"}
            }
        },
        "domain.Stats": {
            "type": "object",
            "properties": {
                "total_requests": {"type": "integer"},
                "succeeded": {"type": "integer"},
                "failed": {"type": "integer"},
                "items_extracted": {"type": "integer"},
                "average_confidence": {"type": "number"},
                "started_at": {"type": "string"},
                "uptime_seconds": {"type": "integer"}
            }
        },
        "handler.ExtractRequest": {
            "type": "object",
            "required": ["document"],
            "properties": {
                "document": {"type": "string", "example": "https://example.com/bills/sample_1.png"}
            }
        },
        "handler.ExtractTextRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string", "example": "Crocin 650 Tab 2 x 15.00 = 30.00"}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "is_success": {"type": "boolean", "example": false},
                "error": {"type": "string", "example": "Invalid document URL format"}
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "service": {"type": "string", "example": "Bill Extraction API"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "handler.InfoResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "version": {"type": "string"},
                "endpoints": {"type": "object", "additionalProperties": {"type": "string"}},
                "ocr_providers": {"type": "array", "items": {"type": "string"}}
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
	Title:            "Medical Bill Extraction API",
	Description:      "Extracts billed line items from medical bill documents and OCR text.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
