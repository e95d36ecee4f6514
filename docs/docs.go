// Package docs registers the OpenAPI description of the ledger API with swag.
// It mirrors the handler annotations in internal/interfaces/http/handler.
package docs

import "github.com/swaggo/swag/v2"

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
        "/properties/{id}/depreciation": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "List depreciation schedules",
                "operationId": "listPropertyDepreciation",
                "parameters": [{"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/properties/{id}/depreciation/schedules": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Create a depreciation schedule",
                "operationId": "createDepreciationSchedule",
                "parameters": [
                    {"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true},
                    {"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/depreciation.CreateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/properties/{id}/depreciation/schedules/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Import extracted schedule candidates",
                "operationId": "importDepreciationSchedule",
                "parameters": [
                    {"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true},
                    {"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/properties/{id}/depreciation/projection": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["projection"],
                "summary": "Project deductions by financial year",
                "operationId": "getDepreciationProjection",
                "parameters": [
                    {"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "First financial year", "name": "from_fy", "in": "query", "required": true},
                    {"type": "integer", "description": "Last financial year, at most 60 years later", "name": "to_fy", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/depreciation.ProjectionResponse"}}}]}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/properties/{id}/capital-works": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Add a capital works item",
                "operationId": "addCapitalWorks",
                "parameters": [
                    {"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true},
                    {"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/properties/{id}/cgt/cost-base": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cgt"],
                "summary": "Get the CGT cost base",
                "operationId": "getCostBase",
                "parameters": [{"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/properties/{id}/cgt/sale": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cgt"],
                "summary": "Get the recorded sale",
                "operationId": "getPropertySale",
                "parameters": [{"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cgt"],
                "summary": "Record a property sale",
                "operationId": "recordPropertySale",
                "parameters": [
                    {"type": "string", "description": "Property ID", "name": "id", "in": "path", "required": true},
                    {"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/depreciation/validate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Validate and recalculate candidates",
                "operationId": "validateDepreciationCandidates",
                "parameters": [{"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/depreciation/preview": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Preview a multi-year schedule",
                "operationId": "previewDepreciationSchedule",
                "parameters": [
                    {"type": "string", "description": "Original cost", "name": "cost", "in": "query", "required": true},
                    {"type": "string", "description": "Effective life in years", "name": "life", "in": "query", "required": true},
                    {"type": "string", "description": "diminishing_value or prime_cost", "name": "method", "in": "query"},
                    {"type": "integer", "description": "Rows to generate, 1 to 40", "name": "max_years", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/depreciation/schedules/{id}/assets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Add an asset to a schedule",
                "operationId": "addDepreciationAsset",
                "parameters": [
                    {"type": "string", "description": "Schedule ID", "name": "id", "in": "path", "required": true},
                    {"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/depreciation.AssetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/depreciation/schedules/{id}/claims": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["claims"],
                "summary": "Claim a financial year",
                "operationId": "claimFinancialYear",
                "parameters": [
                    {"type": "string", "description": "Schedule ID", "name": "id", "in": "path", "required": true},
                    {"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/depreciation/schedules/{id}/claims/{fy}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["claims"],
                "summary": "Remove the claims of a financial year",
                "operationId": "unclaimFinancialYear",
                "parameters": [
                    {"type": "string", "description": "Schedule ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Financial year, by ending year", "name": "fy", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/depreciation/assets/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Update an asset",
                "operationId": "updateDepreciationAsset",
                "parameters": [
                    {"type": "string", "description": "Asset ID", "name": "id", "in": "path", "required": true},
                    {"description": "Request body", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/depreciation.AssetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["depreciation"],
                "summary": "Delete an asset",
                "operationId": "deleteDepreciationAsset",
                "parameters": [{"type": "string", "description": "Asset ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/depreciation/assets/{id}/move-to-pool": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["depreciation"],
                "summary": "Move an asset into the low-value pool",
                "operationId": "moveAssetToLowValuePool",
                "parameters": [{"type": "string", "description": "Asset ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/portfolio/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Summarise the portfolio",
                "operationId": "getPortfolioSummary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "INVALID_PROJECTION_RANGE"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "details": {"type": "array", "items": {"type": "object"}}
            }
        },
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorInfo"}
            }
        },
        "depreciation.AssetRequest": {
            "type": "object",
            "properties": {
                "asset_name": {"type": "string", "example": "Oven"},
                "category": {"type": "string", "enum": ["plant_equipment", "capital_works"]},
                "original_cost": {"type": "string", "example": "2000"},
                "effective_life": {"type": "string", "example": "10"},
                "method": {"type": "string", "enum": ["diminishing_value", "prime_cost"]},
                "purchase_date": {"type": "string", "example": "2024-08-01"}
            }
        },
        "depreciation.CreateScheduleRequest": {
            "type": "object",
            "properties": {
                "effective_date": {"type": "string", "example": "2024-07-01"},
                "document_id": {"type": "string"},
                "assets": {"type": "array", "items": {"$ref": "#/definitions/depreciation.AssetRequest"}}
            }
        },
        "depreciation.ProjectionRowResponse": {
            "type": "object",
            "properties": {
                "financial_year": {"type": "integer", "example": 2025},
                "financial_year_label": {"type": "string", "example": "2024-25"},
                "div40_total": {"type": "string", "example": "1250"},
                "div43_total": {"type": "string", "example": "10000"},
                "low_value_pool_total": {"type": "string", "example": "150"},
                "grand_total": {"type": "string", "example": "11400"}
            }
        },
        "depreciation.ProjectionResponse": {
            "type": "object",
            "properties": {
                "property_id": {"type": "string", "format": "uuid"},
                "from_fy": {"type": "integer", "example": 2025},
                "to_fy": {"type": "integer", "example": 2030},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/depreciation.ProjectionRowResponse"}},
                "total": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Property Ledger API",
	Description:      "Depreciation, claims, projections and CGT for residential investment properties",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
