package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
	KeyRequestID CtxKey = "RequestID"
)

// Roles issued by the identity service.
const (
	RoleRecruiter = "recruiter"
	RoleCandidate = "candidate"
)
