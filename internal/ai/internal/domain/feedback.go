package domain

// FeedbackRequest 评审一份提交需要的全部信息
type FeedbackRequest struct {
	SubmissionID   int64
	AssignmentCode string
	Title          string
	Description    string
	// 作业要求，按顺序
	Requirements []string
	// 建议，按顺序
	Recommendations []string
	// 提交类型，blog、code 或者 github
	Kind string
	// Reference 学生提交的地址，直接提交内容的时候为空
	Reference       string
	SubmissionTitle string
	Content         string
	Structure       string
}

type FeedbackResponse struct {
	// Score 0-100
	Score     int
	Subscores Subscores
	// Content 给学生看的评语
	Content   string
	ModelInfo ModelInfo
	// TimingMs 调用耗时
	TimingMs int64
}

type Subscores struct {
	RequirementsMet int `json:"requirementsMet"`
	Quality         int `json:"quality"`
	BestPractices   int `json:"bestPractices"`
	Creativity      int `json:"creativity"`
}

type ModelInfo struct {
	Model      string
	TokensUsed int64
}
