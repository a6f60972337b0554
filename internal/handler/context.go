package handler

type ContextKey string

var (
	RolesCtxKey    ContextKey = "roles"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	PersonInfoCtx  ContextKey = "personInfo"
	DepartmentCtx  ContextKey = "department"
	ApplicationCtx ContextKey = "application"
	SickNoteCtx    ContextKey = "sickNote"
)
