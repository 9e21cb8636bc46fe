package errs

var (
	SystemError        = ErrorCode{Code: 521001, Msg: "系统错误"}
	AssignmentNotFound = ErrorCode{Code: 421001, Msg: "作业不存在"}
	InvalidAssignment  = ErrorCode{Code: 421002, Msg: "作业信息不完整"}
)

type ErrorCode struct {
	Code int
	Msg  string
}
