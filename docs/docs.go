// Package docs содержит спецификацию Swagger для /swagger/*.
// Пересобирается командой swag init -g cmd/app/app.go.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Вход по паролю приложения",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/suppliers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["feeds"],
                "summary": "Список поставщиков",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.SupplierResponse"}}}
                }
            }
        },
        "/feeds/convert": {
            "post": {
                "description": "Скачивает фид, фильтрует и возвращает отчет или CSV (output=csv)",
                "consumes": ["application/json"],
                "produces": ["application/json", "text/csv"],
                "tags": ["feeds"],
                "summary": "Конвертация фида поставщика",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ConvertRequest"}},
                    {"type": "string", "description": "csv — скачать файл", "name": "output", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/feeds/upload": {
            "post": {
                "description": "Формат определяется по содержимому",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json", "text/csv"],
                "tags": ["feeds"],
                "summary": "Конвертация загруженного XML",
                "parameters": [
                    {"type": "file", "description": "XML-фид", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Фильтр по производителю", "name": "producer", "in": "formData"},
                    {"type": "integer", "description": "Минимальный остаток", "name": "min_stock", "in": "formData"},
                    {"type": "string", "description": "csv — скачать файл", "name": "output", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/baselinker/commands": {
            "post": {
                "description": "Текстовая команда переводится в вызов API, например \"get categories\"",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["baselinker"],
                "summary": "Выполнить команду BaseLinker",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CommandRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CommandResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/baselinker/quick-actions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["baselinker"],
                "summary": "Готовые команды",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}
                }
            }
        },
        "/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Журнал конвертаций",
                "parameters": [
                    {"type": "integer", "description": "Сколько записей (по умолчанию 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.RunResponse"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/runs/{id}/export": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["runs"],
                "summary": "CSV из архива",
                "parameters": [
                    {"type": "string", "description": "ID запуска", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "kind": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.LoginRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "http.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"},
                "auth_disabled": {"type": "boolean"}
            }
        },
        "http.SupplierResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "format": {"type": "string"},
                "configured": {"type": "boolean"}
            }
        },
        "http.ConvertRequest": {
            "type": "object",
            "properties": {
                "supplier": {"type": "string"},
                "producer": {"type": "string"},
                "min_stock": {"type": "integer"}
            }
        },
        "catalog.ProducerStat": {
            "type": "object",
            "properties": {
                "producer": {"type": "string"},
                "count": {"type": "integer"},
                "total_stock": {"type": "integer"},
                "average_stock": {"type": "number"}
            }
        },
        "catalog.Summary": {
            "type": "object",
            "properties": {
                "total_products": {"type": "integer"},
                "total_stock": {"type": "integer"},
                "average_price": {"type": "string"},
                "average_stock": {"type": "number"},
                "with_stock": {"type": "integer"},
                "producers": {"type": "array", "items": {"$ref": "#/definitions/catalog.ProducerStat"}}
            }
        },
        "http.PreviewResponse": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "ean": {"type": "string"},
                "name": {"type": "string"},
                "producer": {"type": "string"},
                "price_gross": {"type": "string"},
                "stock": {"type": "integer"}
            }
        },
        "http.ReportResponse": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "source": {"type": "string"},
                "format": {"type": "string"},
                "parsed_count": {"type": "integer"},
                "with_stock": {"type": "integer"},
                "unique_producers": {"type": "integer"},
                "filtered_count": {"type": "integer"},
                "summary": {"$ref": "#/definitions/catalog.Summary"},
                "producer_breakdown": {"type": "array", "items": {"$ref": "#/definitions/catalog.ProducerStat"}},
                "producers": {"type": "array", "items": {"type": "string"}},
                "preview": {"type": "array", "items": {"$ref": "#/definitions/http.PreviewResponse"}},
                "file_name": {"type": "string"},
                "export_key": {"type": "string"}
            }
        },
        "http.CommandRequest": {
            "type": "object",
            "properties": {"command": {"type": "string"}}
        },
        "http.TableResponse": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "total": {"type": "integer"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "http.CommandResponse": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "kind": {"type": "string"},
                "method": {"type": "string"},
                "parameters": {"type": "object", "additionalProperties": true},
                "table": {"$ref": "#/definitions/http.TableResponse"},
                "result": {"type": "object", "additionalProperties": true}
            }
        },
        "http.RunResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "origin": {"type": "string"},
                "format": {"type": "string"},
                "producer_filter": {"type": "string"},
                "min_stock": {"type": "integer"},
                "parsed_count": {"type": "integer"},
                "filtered_count": {"type": "integer"},
                "total_stock": {"type": "integer"},
                "average_price": {"type": "string"},
                "has_export": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Feed Converter API",
	Description:      "Конвертация XML-фидов поставщиков в CSV и команды BaseLinker.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
