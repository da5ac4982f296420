// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/csrf": {
            "get": {"tags": ["sessions"], "summary": "CSRF 토큰 발급", "responses": {"200": {"description": "OK"}}}
        },
        "/sessions": {
            "post": {"tags": ["sessions"], "summary": "이메일/비밀번호 로그인", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "로그아웃", "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/provider": {
            "post": {"tags": ["sessions"], "summary": "외부 인증 토큰으로 로그인", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/users": {
            "post": {"tags": ["users"], "summary": "회원가입", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/users/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "내 정보", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "회원 탈퇴", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/users/me/settings": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "설정 변경", "responses": {"200": {"description": "OK"}}}
        },
        "/memos": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["memos"], "summary": "메모 목록", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["memos"], "summary": "메모 작성", "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/memos/search": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["memos"], "summary": "메모 검색", "responses": {"200": {"description": "OK"}}}
        },
        "/memos/{id}": {
            "get": {"tags": ["memos"], "summary": "메모 조회", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["memos"], "summary": "메모 수정", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["memos"], "summary": "메모 삭제", "responses": {"200": {"description": "OK"}}}
        },
        "/memos/{id}/visibility": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["memos"], "summary": "공개 범위 변경", "responses": {"200": {"description": "OK"}}}
        },
        "/tags": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["memos"], "summary": "내 태그 목록", "responses": {"200": {"description": "OK"}}}
        },
        "/groups": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "내 그룹 목록", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "그룹 생성", "responses": {"201": {"description": "Created"}}}
        },
        "/groups/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "그룹 조회", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "그룹 수정", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "그룹 삭제", "responses": {"200": {"description": "OK"}}}
        },
        "/groups/{id}/members": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "멤버 목록", "responses": {"200": {"description": "OK"}}}
        },
        "/groups/{id}/members/{user_id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "멤버 제외", "responses": {"200": {"description": "OK"}}}
        },
        "/groups/{id}/leave": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "그룹 탈퇴", "responses": {"200": {"description": "OK"}}}
        },
        "/groups/{id}/invitations": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "대기 중인 초대 목록", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "초대 생성", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/invitations/{invitation_id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "초대 취소", "responses": {"200": {"description": "OK"}}}
        },
        "/invitations/{token}/accept": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "초대 수락", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session token or identity-provider JWT using the Bearer scheme. Example: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "2.0",
	Host:             "localhost:8082",
	BasePath:         "/api/v2",
	Schemes:          []string{},
	Title:            "Memo API",
	Description:      "Personal and group memos with legacy session and identity-provider sign-in",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
