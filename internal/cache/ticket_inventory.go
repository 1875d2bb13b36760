package cache

import (
	"context"
	"fmt"
	"strconv"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// InventoryGate 熱路徑的 Redis 庫存閘門。
// 這只是快照層的快速失敗：最終的庫存授權仍是資料庫的條件式 UPDATE。
// 未預熱的票種不會被閘門擋下（交給資料庫判定），所以 Redis 掉資料只影響效能不影響正確性。
type InventoryGate interface {
	// WarmUp 開賣前把票種剩餘庫存載入 Redis
	WarmUp(ctx context.Context, ticketTypeID int, stock int) error
	// GetStock 讀取快照庫存
	GetStock(ctx context.Context, ticketTypeID int) (int, error)
	// Reserve 多行 all-or-nothing 預扣（Lua 確保原子性）；
	// 任一行不足時整批不動並回傳 ErrInsufficientStock
	Reserve(ctx context.Context, lines []model.OrderLineRequest) error
	// Release 歸還預扣量（訂單建立失敗、取消或逾期時）
	Release(ctx context.Context, lines []model.OrderLineRequest) error
}

type RedisInventoryGateImpl struct {
	client *redis.Client
}

func NewRedisInventoryGate(client *redis.Client) InventoryGate {
	return &RedisInventoryGateImpl{
		client: client,
	}
}

func (g *RedisInventoryGateImpl) stockKey(ticketTypeID int) string {
	return fmt.Sprintf("tickettype:%d:stock", ticketTypeID)
}

func (g *RedisInventoryGateImpl) WarmUp(ctx context.Context, ticketTypeID int, stock int) error {
	return g.client.Set(ctx, g.stockKey(ticketTypeID), stock, 0).Err()
}

func (g *RedisInventoryGateImpl) GetStock(ctx context.Context, ticketTypeID int) (int, error) {
	val, err := g.client.Get(ctx, g.stockKey(ticketTypeID)).Int()
	if err == redis.Nil {
		return -1, apperrors.ErrTicketTypeNotFound
	}
	return val, err
}

func (g *RedisInventoryGateImpl) keysAndArgs(lines []model.OrderLineRequest) ([]string, []interface{}) {
	keys := make([]string, 0, len(lines))
	args := make([]interface{}, 0, len(lines))
	for _, line := range lines {
		keys = append(keys, g.stockKey(line.ID))
		args = append(args, line.Quantity)
	}
	return keys, args
}

func (g *RedisInventoryGateImpl) Reserve(ctx context.Context, lines []model.OrderLineRequest) error {
	if len(lines) == 0 {
		return nil
	}

	keys, args := g.keysAndArgs(lines)

	script := `
		-- 第一輪：檢查每一行的快照庫存（缺 key 視為未預熱，不擋）
		for i = 1, #KEYS do
			local stock = redis.call('GET', KEYS[i])
			if stock and tonumber(stock) < tonumber(ARGV[i]) then
				return -1 -- 錯誤：庫存不足
			end
		end

		-- 第二輪：全部扣減（只扣有預熱的 key）
		for i = 1, #KEYS do
			if redis.call('EXISTS', KEYS[i]) == 1 then
				redis.call('DECRBY', KEYS[i], ARGV[i])
			end
		end

		return 1 -- 預扣成功
	`

	result, err := g.client.Eval(ctx, script, keys, args...).Result()
	if err != nil {
		return err
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("unexpected reserve result: %v", result)
	}

	switch code {
	case 1:
		return nil
	case -1:
		return apperrors.ErrInsufficientStock
	default:
		return fmt.Errorf("unexpected reserve code: %s", strconv.FormatInt(code, 10))
	}
}

func (g *RedisInventoryGateImpl) Release(ctx context.Context, lines []model.OrderLineRequest) error {
	if len(lines) == 0 {
		return nil
	}

	keys, args := g.keysAndArgs(lines)

	script := `
		for i = 1, #KEYS do
			if redis.call('EXISTS', KEYS[i]) == 1 then
				redis.call('INCRBY', KEYS[i], ARGV[i])
			end
		end
		return 1
	`

	return g.client.Eval(ctx, script, keys, args...).Err()
}
