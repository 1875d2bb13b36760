package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicketType_RefundDeadline(t *testing.T) {
	end := time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)
	saleEnd := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)

	withoutSaleEnd := &TicketType{EndTime: end}
	assert.Equal(t, end, withoutSaleEnd.RefundDeadline())

	withSaleEnd := &TicketType{EndTime: end, SaleEndAt: &saleEnd}
	assert.Equal(t, saleEnd, withSaleEnd.RefundDeadline())
}

func TestTicketType_InSaleWindow(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	tt := &TicketType{StartTime: start, EndTime: end}

	// 邊界：起點含，終點不含
	assert.True(t, tt.InSaleWindow(start))
	assert.True(t, tt.InSaleWindow(end.Add(-time.Second)))
	assert.False(t, tt.InSaleWindow(start.Add(-time.Second)))
	assert.False(t, tt.InSaleWindow(end))

	// 設定了獨立售票區間時以售票區間為準
	saleStart := start.Add(48 * time.Hour)
	tt.SaleStartAt = &saleStart
	assert.False(t, tt.InSaleWindow(start))
	assert.True(t, tt.InSaleWindow(saleStart))
}

func TestActivity_IsPurchasable(t *testing.T) {
	now := time.Now()
	future := now.Add(72 * time.Hour)

	published := &Activity{Status: ActivityStatusPublished, EndTime: future}
	assert.True(t, published.IsPurchasable(now))

	draft := &Activity{Status: ActivityStatusDraft, EndTime: future}
	assert.False(t, draft.IsPurchasable(now))

	ended := &Activity{Status: ActivityStatusPublished, EndTime: now.Add(-time.Hour)}
	assert.False(t, ended.IsPurchasable(now))
}
