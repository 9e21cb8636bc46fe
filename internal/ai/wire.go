//go:build wireinject

package ai

import (
	"sync"

	"github.com/ecodeclub/coursework/internal/ai/internal/repository"
	"github.com/ecodeclub/coursework/internal/ai/internal/repository/dao"
	"github.com/ecodeclub/coursework/internal/ai/internal/service"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler/log"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler/record"
	"github.com/ego-component/egorm"
	"github.com/google/wire"
)

func InitModule(db *egorm.Component) (*Module, error) {
	wire.Build(
		InitLLMRecordDAO,
		repository.NewLLMLogRepo,

		log.NewHandler,
		record.NewHandler,
		InitCommonHandlers,
		InitConfig,
		InitPlatform,
		InitLLMService,
		InitModelConfig,

		service.NewFeedbackService,
		wire.Struct(new(Module), "*"),
	)
	return new(Module), nil
}

var daoOnce = sync.Once{}

func InitTableOnce(db *egorm.Component) {
	daoOnce.Do(func() {
		err := dao.InitTables(db)
		if err != nil {
			panic(err)
		}
	})
}

func InitLLMRecordDAO(db *egorm.Component) dao.LLMRecordDAO {
	InitTableOnce(db)
	return dao.NewGORMLLMRecordDAO(db)
}
