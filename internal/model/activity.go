package model

import "time"

// ActivityStatus 活動發佈狀態
type ActivityStatus string

const (
	ActivityStatusDraft     ActivityStatus = "draft"
	ActivityStatusPublished ActivityStatus = "published"
)

// Activity 活動模型（本子系統唯讀，由主辦方流程建立）
type Activity struct {
	ID             int            `json:"id" db:"id"`
	OrganizationID int            `json:"organizationId" db:"organization_id"`
	Title          string         `json:"title" db:"title"`
	StartTime      time.Time      `json:"startTime" db:"start_time"`
	EndTime        time.Time      `json:"endTime" db:"end_time"`
	Status         ActivityStatus `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// IsPurchasable 檢查活動是否可公開購票
func (a *Activity) IsPurchasable(now time.Time) bool {
	return a.Status == ActivityStatusPublished && now.Before(a.EndTime)
}
