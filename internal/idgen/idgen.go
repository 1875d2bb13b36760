// Package idgen 產生人眼可讀且抗碰撞的訂單/票券編號。
// 編號由本地時間戳加上 crypto/rand 隨機數字組成，時間戳讓編號可被人工解讀，
// 隨機尾碼避免同秒內的碰撞。
package idgen

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"
)

const (
	orderPrefix  = "O"
	ticketPrefix = "T"

	// yymmddHHMMSS，共 12 位
	timestampLayout = "060102150405"

	randomSuffixLen = 5

	// 5 位數字尾碼的總空間；同一秒內的批次不能逼近這個數
	randomSuffixSpace = 100000
)

var (
	orderIDPattern  = regexp.MustCompile(`^O\d{12}-\d{5}$`)
	ticketIDPattern = regexp.MustCompile(`^T\d{17}$`)
)

// randomDigits 以 crypto/rand 產生 n 位數字字串
func randomDigits(n int) (string, error) {
	const charset = "0123456789"

	code := make([]byte, n)
	if _, err := rand.Read(code); err != nil {
		return "", err
	}

	for i := 0; i < n; i++ {
		code[i] = charset[int(code[i])%len(charset)]
	}

	return string(code), nil
}

// NewOrderID 產生訂單編號：O + 12位本地時間戳 + "-" + 5位隨機數字
func NewOrderID(now time.Time) (string, error) {
	suffix, err := randomDigits(randomSuffixLen)
	if err != nil {
		return "", err
	}
	return orderPrefix + now.Format(timestampLayout) + "-" + suffix, nil
}

// NewTicketID 產生票券編號：T + 17位數字（12位本地時間戳 + 5位隨機數字）
func NewTicketID(now time.Time) (string, error) {
	suffix, err := randomDigits(randomSuffixLen)
	if err != nil {
		return "", err
	}
	return ticketPrefix + now.Format(timestampLayout) + suffix, nil
}

// NewTicketIDBatch 產生 n 個彼此不重複的票券編號。
// 同一張訂單的票共用同一個時間戳，尾碼只有 5 位隨機數字，
// 大張訂單若逐張獨立取號，同秒內撞號的機率不可忽略；
// 這裡在批次內去重，保證回傳的編號兩兩不同。
func NewTicketIDBatch(now time.Time, n int) ([]string, error) {
	if n < 0 || n > randomSuffixSpace/10 {
		return nil, fmt.Errorf("ticket id batch size %d out of range", n)
	}

	ids := make([]string, 0, n)
	seen := make(map[string]bool, n)

	for len(ids) < n {
		id, err := NewTicketID(now)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids, nil
}

// IsOrderID 檢查字串是否為合法訂單編號
func IsOrderID(id string) bool {
	return orderIDPattern.MatchString(id)
}

// IsTicketID 檢查字串是否為合法票券編號（所有接受票券編號的邊界都應先驗證）
func IsTicketID(id string) bool {
	return ticketIDPattern.MatchString(id)
}
