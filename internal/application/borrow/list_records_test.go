package borrow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMyHistory_JoinsSummaries 借阅历史附带图书与借阅人摘要
func TestMyHistory_JoinsSummaries(t *testing.T) {
	f := newBorrowFixture()
	uc := NewMyHistoryUseCase(f.borrowRepo, f.bookRepo, f.userRepo)

	u := f.addUser(true)
	b := f.addBook(2)
	f.addOpenRecord(u.ID, b.ID, time.Now().Add(-24*time.Hour))

	records, total, err := uc.Execute(context.Background(), MyHistoryRequest{
		UserID:   u.ID,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)

	r := records[0]
	require.NotNil(t, r.Book, "记录应带图书摘要")
	assert.Equal(t, "Go语言实战", r.Book.Title)
	assert.Equal(t, "William Kennedy", r.Book.Author)
	assert.Equal(t, "9787115428028", r.Book.ISBN)
	require.NotNil(t, r.User, "记录应带借阅人摘要")
	assert.Equal(t, u.Username, r.User.Username)
	assert.Equal(t, u.Email, r.User.Email)
}

// TestListRecords_JoinsSummaries 管理端全量记录查询附带用户与图书摘要
func TestListRecords_JoinsSummaries(t *testing.T) {
	f := newBorrowFixture()
	uc := NewListRecordsUseCase(f.borrowRepo, f.bookRepo, f.userRepo)

	u1 := f.addUser(true)
	u2 := f.addUser(true)
	b := f.addBook(3)
	f.addOpenRecord(u1.ID, b.ID, time.Now().Add(-48*time.Hour))
	f.addOpenRecord(u2.ID, b.ID, time.Now().Add(-24*time.Hour))

	records, total, err := uc.Execute(context.Background(), ListRecordsRequest{
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 2)

	for _, r := range records {
		require.NotNil(t, r.User, "记录%d应带借阅人摘要", r.ID)
		assert.NotEmpty(t, r.User.Email)
		require.NotNil(t, r.Book, "记录%d应带图书摘要", r.ID)
		assert.Equal(t, "Go语言实战", r.Book.Title)
	}
}

// TestListRecords_MissingUserLeavesSummaryEmpty 用户数据缺失时摘要留空,列表不失败
func TestListRecords_MissingUserLeavesSummaryEmpty(t *testing.T) {
	f := newBorrowFixture()
	uc := NewListRecordsUseCase(f.borrowRepo, f.bookRepo, f.userRepo)

	b := f.addBook(1)
	f.addOpenRecord(999, b.ID, time.Now().Add(-24*time.Hour))

	records, _, err := uc.Execute(context.Background(), ListRecordsRequest{
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err, "单条摘要查询失败不应让整页列表失败")
	require.Len(t, records, 1)

	assert.Nil(t, records[0].User)
	require.NotNil(t, records[0].Book)
	assert.Equal(t, "Go语言实战", records[0].Book.Title)
}
