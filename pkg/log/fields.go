package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldMemberUUID = "member_uuid"
	FieldMemberID   = "member_id"
	FieldNickname   = "nickname"

	// Domain
	FieldPostID   = "post_id"
	FieldRoomID   = "room_id"
	FieldClientID = "client_id"
	FieldTopic    = "topic"

	// Service
	FieldService = "service"

	// Log type (for audit entries)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
