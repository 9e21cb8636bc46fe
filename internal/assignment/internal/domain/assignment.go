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
package domain

import "time"

type Assignment struct {
	Id int64
	// Code 6 位作业码，创建之后不可修改
	Code            string
	Title           string
	Description     string
	Requirements    []string
	Recommendations []string
	// Deadline 截止时间，毫秒。0 表示没有截止时间
	Deadline int64
	Status   Status
	// AllowResubmit 是否允许重复提交，重复提交会覆盖之前的记录
	AllowResubmit bool
	// CohortSize 应交人数，0 表示不知道
	CohortSize int
	Creator    int64
	Ctime      int64
	Utime      int64
}

func (a Assignment) Active() bool {
	return a.Status == StatusActive
}

// Expired 截止时间当刻还可以提交
func (a Assignment) Expired(now time.Time) bool {
	return a.Deadline > 0 && now.UnixMilli() > a.Deadline
}

type Status uint8

func (s Status) ToUint8() uint8 {
	return uint8(s)
}

const (
	StatusUnknown  Status = 0
	StatusActive   Status = 1
	StatusInactive Status = 2
)

type ListFilter struct {
	// Creator 大于 0 的时候只查这个人创建的作业
	Creator    int64
	ActiveOnly bool
	Offset     int
	Limit      int
}

type AssignmentList struct {
	Total       int64
	Assignments []Assignment
}
