package errs

var (
	SystemError            = ErrorCode{Code: 522001, Msg: "系统错误", Transient: true}
	ContentFetchFailed     = ErrorCode{Code: 522002, Msg: "获取提交内容失败，请稍后重试", Transient: true}
	InvalidAssignmentCode  = ErrorCode{Code: 422001, Msg: "作业码不合法"}
	AssignmentNotFound     = ErrorCode{Code: 422002, Msg: "作业不存在"}
	AssignmentInactive     = ErrorCode{Code: 422003, Msg: "作业已经停止提交"}
	DeadlinePassed         = ErrorCode{Code: 422004, Msg: "已经过了作业截止时间"}
	DuplicateSubmission    = ErrorCode{Code: 422005, Msg: "已经提交过这个作业"}
	InvalidSubmission      = ErrorCode{Code: 422006, Msg: "提交内容不合法"}
	SubmissionNotFound     = ErrorCode{Code: 422007, Msg: "提交记录不存在"}
	RegenerationNotAllowed = ErrorCode{Code: 422008, Msg: "评审还在生成中，不能重新生成"}
	InvalidReference       = ErrorCode{Code: 422009, Msg: "提交地址不合法或者不存在"}
	ContentTooLarge        = ErrorCode{Code: 422010, Msg: "提交内容超过大小上限"}
	NoReviewableContent    = ErrorCode{Code: 422011, Msg: "没有找到可以评审的内容"}
)

// ErrorCode Transient 为 true 表示重试可能成功
type ErrorCode struct {
	Code      int
	Msg       string
	Transient bool
}
