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
package submission

import (
	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/coursework/internal/submission/internal/event"
	"github.com/ecodeclub/coursework/internal/submission/internal/job"
	"github.com/ecodeclub/coursework/internal/submission/internal/service"
	"github.com/ecodeclub/coursework/internal/submission/internal/web"
)

type Module struct {
	Svc          Service
	Hdl          *Handler
	AdminHandler *AdminHandler
	Consumer     *FeedbackGenerationConsumer
	AbandonJob   *AbandonStaleJob
}

type Service = service.Service
type Handler = web.Handler
type AdminHandler = web.AdminHandler
type FeedbackGenerationConsumer = event.FeedbackGenerationConsumer
type AbandonStaleJob = job.AbandonStaleJob
type GenerationConfig = service.GenerationConfig

type Submission = domain.Submission
type SubmitRequest = domain.SubmitRequest
type State = domain.State

const (
	StateCreated         = domain.StateCreated
	StateFeedbackPending = domain.StateFeedbackPending
	StateFeedbackReady   = domain.StateFeedbackReady
	StateFeedbackFailed  = domain.StateFeedbackFailed
)
