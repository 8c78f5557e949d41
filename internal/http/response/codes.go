package response

// 业务状态码，HTTP 状态码始终为 200，调用方按 status_code 判定结果
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

var codeText = map[int]string{
	CodeOK:              "success",
	CodeBadRequest:      "bad request",
	CodeUnauthorized:    "unauthorized",
	CodeForbidden:       "forbidden",
	CodeNotFound:        "not found",
	CodeConflict:        "conflict",
	CodeTooManyRequests: "too many requests",
	CodeInternal:        "internal error",
}

// CodeText 状态码的缺省英文消息，未知状态码返回空串
func CodeText(code int) string {
	return codeText[code]
}
