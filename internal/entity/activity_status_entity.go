package entity

import "time"

type ActivityStatus struct {
	Id          int64
	ActivityId  int64
	AssigneeId  *int64
	Status      string
	Priority    int
	Description string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
