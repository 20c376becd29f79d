// Package docs registers the swagger document served at /swagger.
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
        "/transactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Create transaction",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateTransactionRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Get transaction",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Update transaction",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateTransactionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Transactions"],
                "summary": "Delete transaction",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Approve transaction",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Cancel transaction",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/journals": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Create journal entry",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateJournalRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/ledger": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Ledger"],
                "summary": "Account statement",
                "parameters": [
                    {"type": "integer", "name": "account_id", "in": "query", "required": true},
                    {"type": "integer", "name": "branch_id", "in": "query"},
                    {"type": "string", "name": "date_from", "in": "query"},
                    {"type": "string", "name": "date_to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.StatementResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/accounts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Create account",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateAccountRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Account"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/accounts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Get account",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Account"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Accounts"],
                "summary": "Delete account",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/accounts/{id}/opening-balance": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Update opening balance",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.OpeningBalanceRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Account"}}}
            }
        },
        "/accounts/{id}/recompute": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Recompute balance",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.BalanceResponse"}}}
            }
        },
        "/accounts/{id}/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Get balance",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.BalanceResponse"}}}
            }
        },
        "/branches": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Branches"],
                "summary": "Create branch",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateBranchRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Branch"}}}
            }
        },
        "/branches/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Branches"],
                "summary": "Get branch",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Branch"}}}
            }
        },
        "/vouchers/next": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Branches"],
                "summary": "Next voucher number",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.NextVoucherRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.NextVoucherResponse"}}}
            }
        }
    },
    "definitions": {
        "services.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "models.Branch": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "models.CreateBranchRequest": {
            "type": "object",
            "required": ["code", "name"],
            "properties": {
                "code": {"type": "string", "maxLength": 10},
                "name": {"type": "string", "maxLength": 255}
            }
        },
        "models.Account": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "nature": {"type": "string", "enum": ["asset", "liability", "equity", "income", "revenue", "expense"]},
                "category": {"type": "string"},
                "description": {"type": "string"},
                "is_active": {"type": "boolean"},
                "opening_balance": {"type": "string"},
                "current_balance": {"type": "string"}
            }
        },
        "models.CreateAccountRequest": {
            "type": "object",
            "required": ["code", "name", "nature"],
            "properties": {
                "code": {"type": "string", "maxLength": 20},
                "name": {"type": "string", "maxLength": 255},
                "nature": {"type": "string", "enum": ["asset", "liability", "equity", "income", "revenue", "expense"]},
                "category": {"type": "string"},
                "description": {"type": "string"},
                "opening_balance": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        },
        "models.LedgerEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "transaction_id": {"type": "integer"},
                "account_id": {"type": "integer"},
                "branch_id": {"type": "integer"},
                "entry_type": {"type": "string", "enum": ["debit", "credit"]},
                "amount": {"type": "string"},
                "description": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "voucher_no": {"type": "string"},
                "date": {"type": "string"},
                "type": {"type": "string", "enum": ["cash", "bank", "contra", "journal"]},
                "branch_id": {"type": "integer"},
                "narration": {"type": "string"},
                "notes": {"type": "string"},
                "bank_name": {"type": "string"},
                "cheque_no": {"type": "string"},
                "cheque_date": {"type": "string"},
                "created_by": {"type": "integer"},
                "total_amount": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "cancelled"]},
                "approved_by": {"type": "integer"},
                "approved_at": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/models.LedgerEntry"}}
            }
        },
        "models.CreateTransactionRequest": {
            "type": "object",
            "required": ["from_account_id", "to_account_id", "amount"],
            "properties": {
                "date": {"type": "string"},
                "branch_id": {"type": "integer"},
                "type": {"type": "string", "enum": ["cash", "bank", "contra", "journal"]},
                "from_account_id": {"type": "integer"},
                "to_account_id": {"type": "integer"},
                "amount": {"type": "string"},
                "narration": {"type": "string"},
                "voucher_no": {"type": "string"},
                "bank_name": {"type": "string"},
                "cheque_no": {"type": "string"},
                "cheque_date": {"type": "string"}
            }
        },
        "models.JournalEntryInput": {
            "type": "object",
            "required": ["account_id", "entry_type", "amount"],
            "properties": {
                "account_id": {"type": "integer"},
                "entry_type": {"type": "string", "enum": ["debit", "credit"]},
                "amount": {"type": "string"},
                "description": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "models.CreateJournalRequest": {
            "type": "object",
            "required": ["transaction_date", "description", "entries"],
            "properties": {
                "transaction_date": {"type": "string"},
                "branch_id": {"type": "integer"},
                "description": {"type": "string"},
                "notes": {"type": "string"},
                "entries": {"type": "array", "minItems": 2, "items": {"$ref": "#/definitions/models.JournalEntryInput"}}
            }
        },
        "models.UpdateTransactionRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "narration": {"type": "string"},
                "notes": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/models.JournalEntryInput"}}
            }
        },
        "models.StatementRow": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "transaction_id": {"type": "integer"},
                "date": {"type": "string"},
                "voucher_no": {"type": "string"},
                "narration": {"type": "string"},
                "branch": {"type": "string"},
                "type": {"type": "string"},
                "debit": {"type": "string"},
                "credit": {"type": "string"},
                "balance": {"type": "string"}
            }
        },
        "handlers.StatementResponse": {
            "type": "object",
            "properties": {
                "account": {"$ref": "#/definitions/models.Account"},
                "opening_balance": {"type": "string"},
                "closing_balance": {"type": "string"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/models.StatementRow"}}
            }
        },
        "handlers.OpeningBalanceRequest": {
            "type": "object",
            "properties": {"opening_balance": {"type": "string"}}
        },
        "handlers.BalanceResponse": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "balance": {"type": "string"}
            }
        },
        "handlers.NextVoucherRequest": {
            "type": "object",
            "required": ["branch_id"],
            "properties": {
                "branch_id": {"type": "integer"},
                "date": {"type": "string"}
            }
        },
        "handlers.NextVoucherResponse": {
            "type": "object",
            "properties": {"voucher_no": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Branch Cashbook API",
	Description:      "Multi-branch cashbook ledger: vouchers, double-entry postings, balances and statements",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
