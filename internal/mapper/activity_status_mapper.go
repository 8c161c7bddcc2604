package mapper

import (
	"author-be/internal/entity"
	"author-be/internal/model"
)

type ActivityStatusMapper struct{}

func NewActivityStatusMapper() *ActivityStatusMapper {
	return &ActivityStatusMapper{}
}

func (m *ActivityStatusMapper) ToEntity(s *model.ActivityStatus) *entity.ActivityStatus {
	if s == nil {
		return nil
	}
	return &entity.ActivityStatus{
		Id:          s.Id,
		ActivityId:  s.ActivityId,
		AssigneeId:  s.AssigneeId,
		Status:      s.Status,
		Priority:    s.Priority,
		Description: s.Description,
		DueDate:     s.DueDate,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   timeToPtr(s.UpdatedAt),
	}
}

func (m *ActivityStatusMapper) ToModel(s *entity.ActivityStatus) *model.ActivityStatus {
	if s == nil {
		return nil
	}
	return &model.ActivityStatus{
		Id:          s.Id,
		ActivityId:  s.ActivityId,
		AssigneeId:  s.AssigneeId,
		Status:      s.Status,
		Priority:    s.Priority,
		Description: s.Description,
		DueDate:     s.DueDate,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   ptrToTime(s.UpdatedAt),
	}
}
