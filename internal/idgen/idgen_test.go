package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 34, 56, 0, time.Local)

	id, err := NewOrderID(now)
	require.NoError(t, err)

	assert.Len(t, id, 19)
	assert.True(t, IsOrderID(id), "generated id %q should validate", id)
	assert.Equal(t, "O260601123456-", id[:14])
}

func TestNewTicketID(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 34, 56, 0, time.Local)

	id, err := NewTicketID(now)
	require.NoError(t, err)

	assert.Len(t, id, 18)
	assert.True(t, IsTicketID(id), "generated id %q should validate", id)
	assert.Equal(t, "T260601123456", id[:13])
}

func TestIsOrderID(t *testing.T) {
	assert.True(t, IsOrderID("O250601123456-12345"))

	assert.False(t, IsOrderID(""))
	assert.False(t, IsOrderID("250601123456-12345"))     // 缺前綴
	assert.False(t, IsOrderID("O25060112345-12345"))     // 時間戳少一位
	assert.False(t, IsOrderID("O250601123456-1234"))     // 尾碼少一位
	assert.False(t, IsOrderID("O25060112345612345"))     // 缺分隔線
	assert.False(t, IsOrderID("O250601123456-12345x"))   // 多餘字元
	assert.False(t, IsOrderID("T25060112345612345"))     // 票券編號不是訂單編號
	assert.False(t, IsOrderID("O250601123456-1234a"))    // 非數字
	assert.False(t, IsOrderID("xO250601123456-12345"))   // 前綴前有字元
	assert.False(t, IsOrderID("O250601123456-12345\n"))  // 換行
	assert.False(t, IsOrderID("1 OR 1=1"))               // 垃圾輸入
}

func TestIsTicketID(t *testing.T) {
	assert.True(t, IsTicketID("T25060112345612345"))

	assert.False(t, IsTicketID(""))
	assert.False(t, IsTicketID("T2506011234561234"))    // 16 位
	assert.False(t, IsTicketID("T250601123456123456")) // 18 位
	assert.False(t, IsTicketID("O250601123456-12345"))
	assert.False(t, IsTicketID("T2506011234561234a"))
}

func TestIDUniqueness(t *testing.T) {
	// 同一時間戳下靠隨機尾碼抗碰撞；抽樣驗證不會立即重複
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, err := NewTicketID(now)
		require.NoError(t, err)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestNewTicketIDBatch(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 34, 56, 0, time.Local)

	t.Run("Success", func(t *testing.T) {
		// 尾碼只有 10^5 個值，2000 個獨立抽樣幾乎必撞（生日問題）；
		// 批次產生必須保證兩兩不同
		ids, err := NewTicketIDBatch(now, 2000)
		require.NoError(t, err)
		require.Len(t, ids, 2000)

		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			assert.True(t, IsTicketID(id), "generated id %q should validate", id)
			assert.False(t, seen[id], "duplicate ticket id %q in batch", id)
			seen[id] = true
		}
	})

	t.Run("Success - empty batch", func(t *testing.T) {
		ids, err := NewTicketIDBatch(now, 0)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Failed - batch exceeds suffix space", func(t *testing.T) {
		_, err := NewTicketIDBatch(now, 50000)
		assert.Error(t, err)
	})
}
