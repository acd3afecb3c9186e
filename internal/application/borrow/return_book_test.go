package borrow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
)

// addOpenRecord 直接注入一条指定借出/应还时间的记录,并扣减在架数
func (f *borrowFixture) addOpenRecord(userID, bookID uint, borrowedAt time.Time) *borrow.Record {
	r := borrow.NewRecord(userID, bookID, borrowedAt)
	f.borrowRepo.put(r)
	if err := f.bookRepo.AdjustAvailable(context.Background(), bookID, -1); err != nil {
		panic(err)
	}
	return r
}

// TestReturnBook_OnTime 按时归还,无罚金
func TestReturnBook_OnTime(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(2)
	r := f.addOpenRecord(u.ID, b.ID, time.Now().Add(-48*time.Hour))

	resp, err := f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.Fine)
	assert.Equal(t, "已归还", resp.Status)
	assert.NotEmpty(t, resp.ReturnDate)

	// 在架数加回
	got, _ := f.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 2, got.AvailableCopies)
}

// TestReturnBook_OverdueFine 逾期归还结算罚金(不足一天按一天计)
func TestReturnBook_OverdueFine(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(1)
	// 借出16天:超期2天,罚金=2*5=10
	r := f.addOpenRecord(u.ID, b.ID, time.Now().Add(-16*24*time.Hour))

	resp, err := f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(2*borrow.FinePerDay), resp.Fine)
}

// TestReturnBook_OverdueMarkedStillReturnable 已标记逾期的记录照常归还
func TestReturnBook_OverdueMarkedStillReturnable(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(1)
	r := f.addOpenRecord(u.ID, b.ID, time.Now().Add(-20*24*time.Hour))

	marked, err := f.borrowRepo.MarkOverdue(context.Background(), r.ID, time.Now())
	require.NoError(t, err)
	require.True(t, marked)

	resp, err := f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "已归还", resp.Status)
	assert.Greater(t, resp.Fine, int64(0))
}

// TestReturnBook_DoubleReturn 重复归还被拒绝,且不重复加回在架数
func TestReturnBook_DoubleReturn(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(1)
	r := f.addOpenRecord(u.ID, b.ID, time.Now())

	_, err := f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID})
	require.NoError(t, err)

	_, err = f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID})
	assert.ErrorIs(t, err, borrow.ErrAlreadyReturned)

	got, _ := f.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 1, got.AvailableCopies)
}

// TestReturnBook_NotOwner 普通读者不能归还他人的记录,管理员可以
func TestReturnBook_NotOwner(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(1)
	r := f.addOpenRecord(u.ID, b.ID, time.Now())

	_, err := f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID + 100})
	assert.ErrorIs(t, err, borrow.ErrNotRecordOwner)

	// 管理员代还任意记录
	_, err = f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID + 100, IsAdmin: true})
	assert.NoError(t, err)
}

// TestReturnBook_RecordNotFound 记录不存在
func TestReturnBook_RecordNotFound(t *testing.T) {
	f := newBorrowFixture()

	_, err := f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: 999, UserID: 1})
	assert.ErrorIs(t, err, borrow.ErrRecordNotFound)
}

// TestReturnBook_CopyCountDrift 在架数已满时归还暴露台账漂移,事务回滚
func TestReturnBook_CopyCountDrift(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(1)

	// 记录存在但在架数未扣减,归还加回会越过总数上限
	r := borrow.NewRecord(u.ID, b.ID, time.Now())
	f.borrowRepo.put(r)

	_, err := f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: r.ID, UserID: u.ID})
	assert.ErrorIs(t, err, book.ErrCopyCountDrift)
}
