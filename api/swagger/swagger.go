package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {"title": "School Assistant API", "description": "School administration backend with a natural-language chat assistant.", "version": "1.0.0"},
    "basePath": "/api",
    "schemes": ["http", "https"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "tags": [
        {"name": "Auth"},
        {"name": "Chat"},
        {"name": "Calendar"},
        {"name": "Google Calendar"},
        {"name": "Roster"},
        {"name": "Grades"},
        {"name": "Attendance"}
    ],
    "paths": {
        "/login": {
            "post": {"tags": ["Auth"], "summary": "Password login", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/google": {
            "get": {"tags": ["Auth"], "summary": "Google authorization URL", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "503": {"description": "Google OAuth not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/google/callback": {
            "get": {"tags": ["Auth"], "summary": "Google OAuth callback", "produces": ["application/json"], "parameters": [{"in": "query", "name": "code", "type": "string", "description": ""}, {"in": "query", "name": "state", "type": "string", "description": ""}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "302": {"description": "Redirect to frontend", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/google/id-token": {
            "post": {"tags": ["Auth"], "summary": "Login with a Google ID token", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/IDTokenLoginRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/me": {
            "get": {"tags": ["Auth"], "summary": "Current user", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/chat": {
            "post": {"tags": ["Chat"], "summary": "Send a chat message", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ChatResponse"}}, "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/ai/status": {
            "get": {"tags": ["Chat"], "summary": "Language model status", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/calendar/events": {
            "get": {"tags": ["Calendar"], "summary": "List calendar events", "produces": ["application/json"], "parameters": [{"in": "query", "name": "start_date", "type": "string", "description": "YYYY-MM-DD"}, {"in": "query", "name": "end_date", "type": "string", "description": "YYYY-MM-DD"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Calendar"], "summary": "Create calendar event", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CalendarEventRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/calendar/events/{id}": {
            "put": {"tags": ["Calendar"], "summary": "Update calendar event", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CalendarEventRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Calendar"], "summary": "Delete calendar event", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/calendar/google/status": {
            "get": {"tags": ["Google Calendar"], "summary": "Google link status", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/calendar/google/calendars": {
            "get": {"tags": ["Google Calendar"], "summary": "List Google calendars", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "502": {"description": "Google API failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/calendar/google/events": {
            "get": {"tags": ["Google Calendar"], "summary": "List Google Calendar events", "produces": ["application/json"], "parameters": [{"in": "query", "name": "start_date", "type": "string", "description": "YYYY-MM-DD"}, {"in": "query", "name": "end_date", "type": "string", "description": "YYYY-MM-DD"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "502": {"description": "Google API failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Google Calendar"], "summary": "Create Google Calendar event", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/GoogleEventRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/calendar/google/events/{id}": {
            "put": {"tags": ["Google Calendar"], "summary": "Update Google Calendar event", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/GoogleEventRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Google Calendar"], "summary": "Delete Google Calendar event", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/teachers": {
            "get": {"tags": ["Roster"], "summary": "List active teachers", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/classes": {
            "get": {"tags": ["Roster"], "summary": "List classes", "produces": ["application/json"], "parameters": [{"in": "query", "name": "academic_year", "type": "integer", "description": ""}, {"in": "query", "name": "grade", "type": "integer", "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Roster"], "summary": "Create class", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateClassRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Class already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/classes/{id}/grades": {
            "get": {"tags": ["Grades"], "summary": "Class grade summary", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/classes/{id}/attendance": {
            "get": {"tags": ["Attendance"], "summary": "Class attendance summary", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}, {"in": "query", "name": "format", "type": "string", "description": "csv or pdf"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/students": {
            "get": {"tags": ["Roster"], "summary": "List students", "produces": ["application/json"], "parameters": [{"in": "query", "name": "search", "type": "string", "description": ""}, {"in": "query", "name": "class_id", "type": "string", "description": ""}, {"in": "query", "name": "academic_year", "type": "integer", "description": ""}, {"in": "query", "name": "page", "type": "integer", "description": ""}, {"in": "query", "name": "limit", "type": "integer", "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Roster"], "summary": "Create student", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/students/{id}": {
            "get": {"tags": ["Roster"], "summary": "Student detail", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/students/{id}/grades": {
            "get": {"tags": ["Grades"], "summary": "Student grades", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}, {"in": "query", "name": "academic_year", "type": "integer", "description": ""}, {"in": "query", "name": "format", "type": "string", "description": "csv or pdf"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/students/{id}/attendance": {
            "get": {"tags": ["Attendance"], "summary": "Student attendance", "produces": ["application/json"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true, "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/grades": {
            "post": {"tags": ["Grades"], "summary": "Record a grade", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateGradeRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Grade already recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/grades/top": {
            "get": {"tags": ["Grades"], "summary": "Highest averages", "produces": ["application/json"], "parameters": [{"in": "query", "name": "limit", "type": "integer", "description": ""}, {"in": "query", "name": "grade", "type": "integer", "description": ""}, {"in": "query", "name": "academic_year", "type": "integer", "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/grades/bottom": {
            "get": {"tags": ["Grades"], "summary": "Lowest averages", "produces": ["application/json"], "parameters": [{"in": "query", "name": "limit", "type": "integer", "description": ""}, {"in": "query", "name": "grade", "type": "integer", "description": ""}, {"in": "query", "name": "academic_year", "type": "integer", "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/subjects/{name}/analysis": {
            "get": {"tags": ["Grades"], "summary": "Subject statistics", "produces": ["application/json"], "parameters": [{"in": "path", "name": "name", "type": "string", "required": true, "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/attendance": {
            "post": {"tags": ["Attendance"], "summary": "Record attendance", "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/attendance/ranking": {
            "get": {"tags": ["Attendance"], "summary": "Attendance ranking", "produces": ["application/json"], "parameters": [{"in": "query", "name": "order", "type": "string", "description": "asc or desc"}, {"in": "query", "name": "limit", "type": "integer", "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/attendance/rollups": {
            "post": {"tags": ["Attendance"], "summary": "Recompute attendance rollups", "produces": ["application/json"], "parameters": [{"in": "query", "name": "academic_year", "type": "integer", "description": ""}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Admin only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "LoginRequest": {"type": "object", "properties": {"login_id": {"type": "string"}, "password": {"type": "string"}}},
        "IDTokenLoginRequest": {"type": "object", "properties": {"id_token": {"type": "string"}}},
        "ChatRequest": {"type": "object", "properties": {"message": {"type": "string"}, "user_id": {"type": "string"}}},
        "ChatResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "response": {"type": "string"}, "intent": {"type": "string"}}},
        "CalendarEventRequest": {"type": "object", "properties": {"title": {"type": "string"}, "description": {"type": "string"}, "start_date": {"type": "string"}, "end_date": {"type": "string"}, "start_time": {"type": "string"}, "end_time": {"type": "string"}, "event_type": {"type": "string"}, "color": {"type": "string"}, "is_all_day": {"type": "boolean"}, "location": {"type": "string"}}},
        "GoogleEventRequest": {"type": "object", "properties": {"summary": {"type": "string"}, "description": {"type": "string"}, "location": {"type": "string"}, "start": {"type": "string"}, "end": {"type": "string"}, "all_day": {"type": "boolean"}}},
        "CreateClassRequest": {"type": "object", "properties": {"academic_year": {"type": "integer"}, "grade": {"type": "integer"}, "class_num": {"type": "integer"}, "teacher_id": {"type": "string"}}},
        "CreateStudentRequest": {"type": "object", "properties": {"name": {"type": "string"}, "class_id": {"type": "string"}, "academic_year": {"type": "integer"}}},
        "CreateGradeRequest": {"type": "object", "properties": {"student_id": {"type": "string"}, "subject_id": {"type": "string"}, "exam_id": {"type": "string"}, "academic_year": {"type": "integer"}, "score": {"type": "number"}, "exam_date": {"type": "string"}}},
        "RecordAttendanceRequest": {"type": "object", "properties": {"student_id": {"type": "string"}, "date": {"type": "string"}, "type_id": {"type": "integer"}, "reason_id": {"type": "integer"}, "note": {"type": "string"}}},
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"data": {"type": "object"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
