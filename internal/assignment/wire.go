// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//go:build wireinject

package assignment

import (
	"sync"

	"github.com/ecodeclub/coursework/internal/assignment/internal/repository"
	"github.com/ecodeclub/coursework/internal/assignment/internal/repository/dao"
	"github.com/ecodeclub/coursework/internal/assignment/internal/service"
	"github.com/ecodeclub/coursework/internal/assignment/internal/web"
	"github.com/ecodeclub/coursework/internal/pkg/cachex"
	"github.com/ego-component/egorm"
	"github.com/google/wire"
)

func InitModule(db *egorm.Component, c cachex.Cache) (*Module, error) {
	wire.Build(
		InitAssignmentDAO,
		repository.NewCachedAssignmentRepository,
		service.NewService,
		web.NewHandler,
		web.NewAdminHandler,
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

func InitAssignmentDAO(db *egorm.Component) dao.AssignmentDAO {
	InitTableOnce(db)
	return dao.NewGORMAssignmentDAO(db)
}
