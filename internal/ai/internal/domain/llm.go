package domain

// LLMRequest 一次大模型调用
type LLMRequest struct {
	// 请求id
	Tid string
	// 发起调用的业务，例如 submission_feedback
	Biz string
	// 业务 ID，例如提交记录的 ID
	BizID int64
	// 用户的输入
	Input string
	// 模型相关的配置
	Config ModelConfig
}

type LLMResponse struct {
	// 花费的token
	Tokens int64
	// llm 的回答
	Answer string
	// 实际使用的模型
	Model string
}

type ModelConfig struct {
	// 使用的模型
	Model       string
	Temperature float64
	TopP        float64
	// 系统 Prompt
	SystemPrompt string
	// 允许的最长输入
	// 这里我们不用计算 token，只需要简单约束一下字符串长度就可以
	MaxInput int
}

type LLMRecord struct {
	Id     int64
	Tid    string
	Biz    string
	BizID  int64
	Model  string
	Tokens int64
	// 调用耗时，毫秒
	Latency int64
	Input   string
	Answer  string
	Status  RecordStatus
	Ctime   int64
	Utime   int64
}

type RecordStatus uint8

func (g RecordStatus) ToUint8() uint8 {
	return uint8(g)
}

const (
	RecordStatusProcessing RecordStatus = 0
	RecordStatusSuccess    RecordStatus = 1
	RecordStatusFailed     RecordStatus = 2
)
