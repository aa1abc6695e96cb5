package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	KeyMemberID      = "member_id"
	KeyMemberName    = "member_name"
	KeyMemberRole    = "member_role"
	KeyFromProtected = "from_protected"
)
