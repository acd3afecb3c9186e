package integration

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 借阅模块集成测试
//
// 场景覆盖:
// 1. 借书→还书完整闭环(副本数变化、应还时间)
// 2. 重复借阅、无可借副本
// 3. 并发借阅不超借
// 4. 未登录访问被拒绝

// TestBorrowReturnFlow 借还完整闭环
func TestBorrowReturnFlow(t *testing.T) {
	RequireServer(t)
	adminToken := AdminToken(t)
	_, readerToken := RegisterTestUser(t, "borrower")

	bookID := CreateTestBook(t, adminToken, "《Go程序设计语言》", 2)

	var recordID uint

	t.Run("正常借书", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/borrows", map[string]interface{}{"book_id": bookID}, readerToken)
		require.Equal(t, 0, resp.Code, "借书失败: %s", resp.Message)

		var data BorrowData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)

		assert.NotZero(t, data.RecordID)
		assert.Equal(t, bookID, data.BookID)
		assert.Equal(t, "借出中", data.Status)
		assert.NotEmpty(t, data.DueDate)
		recordID = data.RecordID

		// 在架数减1
		bookResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
		require.Equal(t, 0, bookResp.Code)
		var book BookData
		require.NoError(t, json.Unmarshal(bookResp.Data, &book))
		assert.Equal(t, 1, book.AvailableCopies)
	})

	t.Run("同一图书不能重复借阅", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/borrows", map[string]interface{}{"book_id": bookID}, readerToken)
		assert.NotEqual(t, 0, resp.Code, "重复借阅应该失败")
	})

	t.Run("正常还书", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/borrows/%d/return", BaseURL, recordID), nil, readerToken)
		require.Equal(t, 0, resp.Code, "还书失败: %s", resp.Message)

		var data ReturnData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)

		assert.Equal(t, "已归还", data.Status)
		assert.Equal(t, int64(0), data.Fine, "未逾期不应产生罚金")

		// 在架数加回
		bookResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
		require.Equal(t, 0, bookResp.Code)
		var book BookData
		require.NoError(t, json.Unmarshal(bookResp.Data, &book))
		assert.Equal(t, 2, book.AvailableCopies)
	})

	t.Run("重复还书被拒绝", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/borrows/%d/return", BaseURL, recordID), nil, readerToken)
		assert.NotEqual(t, 0, resp.Code, "重复还书应该失败")
	})

	t.Run("借阅历史可见", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/borrows/my-history", readerToken)
		require.Equal(t, 0, resp.Code, "查询借阅历史失败: %s", resp.Message)
	})
}

// TestBorrowUnavailable 无可借副本被拒绝
func TestBorrowUnavailable(t *testing.T) {
	RequireServer(t)
	adminToken := AdminToken(t)

	bookID := CreateTestBook(t, adminToken, "《孤本》", 1)

	_, token1 := RegisterTestUser(t, "reader_a")
	_, token2 := RegisterTestUser(t, "reader_b")

	resp1 := PostJSON(t, BaseURL+"/borrows", map[string]interface{}{"book_id": bookID}, token1)
	require.Equal(t, 0, resp1.Code, "第一人借书应该成功: %s", resp1.Message)

	resp2 := PostJSON(t, BaseURL+"/borrows", map[string]interface{}{"book_id": bookID}, token2)
	assert.NotEqual(t, 0, resp2.Code, "无可借副本应该失败")
}

// TestConcurrentBorrow 并发借阅不超借
// 3本可借、10人并发借,成功数必须恰好是3
func TestConcurrentBorrow(t *testing.T) {
	RequireServer(t)
	adminToken := AdminToken(t)

	const (
		copies  = 3
		readers = 10
	)

	bookID := CreateTestBook(t, adminToken, "《抢手书》", copies)

	tokens := make([]string, readers)
	for i := range tokens {
		_, tokens[i] = RegisterTestUser(t, fmt.Sprintf("racer_%d", i))
	}

	var wg sync.WaitGroup
	results := make(chan int, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			resp := PostJSON(t, BaseURL+"/borrows", map[string]interface{}{"book_id": bookID}, token)
			results <- resp.Code
		}(tokens[i])
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for code := range results {
		if code == 0 {
			succeeded++
		}
	}
	assert.Equal(t, copies, succeeded, "成功借出数必须等于可借副本数")

	// 最终在架数为0
	bookResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	require.Equal(t, 0, bookResp.Code)
	var book BookData
	require.NoError(t, json.Unmarshal(bookResp.Data, &book))
	assert.Equal(t, 0, book.AvailableCopies)
}

// TestBorrowRequiresAuth 未登录不能借书
func TestBorrowRequiresAuth(t *testing.T) {
	RequireServer(t)

	resp := PostJSON(t, BaseURL+"/borrows", map[string]interface{}{"book_id": 1}, "")
	assert.NotEqual(t, 0, resp.Code, "未登录应该被拒绝")
}

// TestMemberCannotManageBooks 普通读者不能做馆藏管理
func TestMemberCannotManageBooks(t *testing.T) {
	RequireServer(t)
	_, readerToken := RegisterTestUser(t, "not_admin")

	resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
		"isbn":             GenerateTestISBN(),
		"title":            "《越权测试》",
		"author":           "测试作者",
		"publication_year": 2020,
		"genre":            "Other",
		"total_copies":     1,
	}, readerToken)
	assert.NotEqual(t, 0, resp.Code, "member角色新增图书应该被拒绝")
}
