package domain

// Envelope is the JSON frame written to realtime connections.
// Code carries the protocol status, Type tags push payloads
// (e.g. "notification", "comment") and RequestID echoes the
// client-supplied correlation id for async acknowledgments.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message,omitempty"`
	Type      string `json:"type,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Protocol status codes. Positive codes are server notices and action
// acknowledgments; negative codes are action-level rejections.
const (
	CodeAuthRequired int = 101 // sent on connect and for any action before auth
	CodeOK           int = 200 // auth success; also tags notification pushes
	CodeNewMessage   int = 201 // message delivered to conversation participants
	CodeRevoked      int = 202 // message revoked notice
	CodeRead         int = 203 // read-receipt notice
	CodeUserOffline  int = 204 // presence: user went offline
	CodeUserOnline   int = 205 // presence: user came online
	CodeAuthInvalid  int = 401 // credential invalid or expired
	CodeRevokeDenied int = 403 // revoke requested by a non-sender

	CodeInternalError  int = -100 // handler failed unexpectedly
	CodeInvalidPayload int = -203 // required fields missing or malformed
	CodeForbidden      int = -204 // business rule denied the action
)
