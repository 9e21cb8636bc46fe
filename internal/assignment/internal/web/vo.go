package web

import (
	"github.com/ecodeclub/coursework/internal/assignment/internal/domain"
	"github.com/ecodeclub/ekit/slice"
)

type Assignment struct {
	Code            string   `json:"code,omitempty"`
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	Requirements    []string `json:"requirements,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Deadline        int64    `json:"deadline,omitempty"`
	Status          uint8    `json:"status,omitempty"`
	AllowResubmit   bool     `json:"allowResubmit,omitempty"`
	CohortSize      int      `json:"cohortSize,omitempty"`
	Utime           int64    `json:"utime,omitempty"`
}

func (a Assignment) toDomain() domain.Assignment {
	return domain.Assignment{
		Code:            a.Code,
		Title:           a.Title,
		Description:     a.Description,
		Requirements:    a.Requirements,
		Recommendations: a.Recommendations,
		Deadline:        a.Deadline,
		Status:          domain.Status(a.Status),
		AllowResubmit:   a.AllowResubmit,
		CohortSize:      a.CohortSize,
	}
}

func newAssignment(a domain.Assignment) Assignment {
	return Assignment{
		Code:            a.Code,
		Title:           a.Title,
		Description:     a.Description,
		Requirements:    a.Requirements,
		Recommendations: a.Recommendations,
		Deadline:        a.Deadline,
		Status:          a.Status.ToUint8(),
		AllowResubmit:   a.AllowResubmit,
		CohortSize:      a.CohortSize,
		Utime:           a.Utime,
	}
}

type SaveReq struct {
	Assignment Assignment `json:"assignment"`
}

type CodeReq struct {
	Code string `json:"code"`
}

type Page struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

type AssignmentList struct {
	Total       int64        `json:"total"`
	Assignments []Assignment `json:"assignments"`
}

func newAssignmentList(l domain.AssignmentList) AssignmentList {
	return AssignmentList{
		Total: l.Total,
		Assignments: slice.Map(l.Assignments, func(idx int, src domain.Assignment) Assignment {
			return newAssignment(src)
		}),
	}
}
