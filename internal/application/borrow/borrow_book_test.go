package borrow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/domain/user"
	"github.com/linkai/library/pkg/metrics"
)

func init() {
	// 用例里会打点,注册一次全局指标
	metrics.InitMetrics()
}

type borrowFixture struct {
	bookRepo   *fakeBookRepo
	borrowRepo *fakeBorrowRepo
	userRepo   *fakeUserRepo
	tx         *fakeTxManager
	borrowUC   *BorrowBookUseCase
	returnUC   *ReturnBookUseCase
}

func newBorrowFixture() *borrowFixture {
	f := &borrowFixture{
		bookRepo:   newFakeBookRepo(),
		borrowRepo: newFakeBorrowRepo(),
		userRepo:   newFakeUserRepo(),
		tx:         &fakeTxManager{},
	}
	f.borrowUC = NewBorrowBookUseCase(f.borrowRepo, f.bookRepo, f.userRepo, f.tx)
	f.returnUC = NewReturnBookUseCase(f.borrowRepo, f.bookRepo, f.tx)
	return f
}

func (f *borrowFixture) addUser(active bool) *user.User {
	u := user.NewUser("reader", "reader@example.com", "$2a$12$hash", user.RoleMember)
	u.IsActive = active
	return f.userRepo.put(u)
}

func (f *borrowFixture) addBook(copies int) *book.Book {
	b := book.NewBook("9787115428028", "Go语言实战", "William Kennedy", 2017, book.GenreTechnology, copies, "", "")
	return f.bookRepo.put(b)
}

// TestBorrowBook_Success 正常借书
func TestBorrowBook_Success(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(3)

	resp, err := f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: b.ID})
	require.NoError(t, err)

	assert.NotZero(t, resp.RecordID)
	assert.Equal(t, b.ID, resp.BookID)
	assert.Equal(t, "借出中", resp.Status)

	// 借出结果带借阅人与图书摘要
	require.NotNil(t, resp.User)
	assert.Equal(t, u.Username, resp.User.Username)
	assert.Equal(t, u.Email, resp.User.Email)
	require.NotNil(t, resp.Book)
	assert.Equal(t, "Go语言实战", resp.Book.Title)
	assert.Equal(t, "9787115428028", resp.Book.ISBN)

	// 在架数减1
	got, err := f.bookRepo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)

	// 应还时间 = 借出时间+14天
	rec, err := f.borrowRepo.FindByID(context.Background(), resp.RecordID)
	require.NoError(t, err)
	assert.Equal(t, rec.BorrowDate.Add(14*24*time.Hour), rec.DueDate)
}

// TestBorrowBook_NoAvailableCopies 无可借副本被拒绝
func TestBorrowBook_NoAvailableCopies(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(1)
	other := f.userRepo.put(user.NewUser("other", "other@example.com", "$2a$12$hash", user.RoleMember))

	_, err := f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: other.ID, BookID: b.ID})
	require.NoError(t, err)

	_, err = f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: b.ID})
	assert.ErrorIs(t, err, book.ErrNoAvailableCopies)

	// 失败的借阅不产生记录
	_, err = f.borrowRepo.FindOpenByUserAndBook(context.Background(), u.ID, b.ID)
	assert.ErrorIs(t, err, borrow.ErrRecordNotFound)
}

// TestBorrowBook_DuplicateOpenRecord 同一图书不能重复借阅
func TestBorrowBook_DuplicateOpenRecord(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(5)

	_, err := f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: b.ID})
	require.NoError(t, err)

	_, err = f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: b.ID})
	assert.ErrorIs(t, err, borrow.ErrAlreadyBorrowed)

	// 重复借阅失败不扣减在架数
	got, _ := f.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 4, got.AvailableCopies)
}

// TestBorrowBook_ReturnedRecordAllowsReborrow 归还后可以再次借阅同一图书
func TestBorrowBook_ReturnedRecordAllowsReborrow(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)
	b := f.addBook(1)

	resp, err := f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: b.ID})
	require.NoError(t, err)

	_, err = f.returnUC.Execute(context.Background(), ReturnBookRequest{RecordID: resp.RecordID, UserID: u.ID})
	require.NoError(t, err)

	_, err = f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: b.ID})
	assert.NoError(t, err)
}

// TestBorrowBook_InactiveUser 停用账号不能借书
func TestBorrowBook_InactiveUser(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(false)
	b := f.addBook(3)

	_, err := f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: b.ID})
	assert.Error(t, err)

	got, _ := f.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 3, got.AvailableCopies)
}

// TestBorrowBook_BookNotFound 图书不存在
func TestBorrowBook_BookNotFound(t *testing.T) {
	f := newBorrowFixture()
	u := f.addUser(true)

	_, err := f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: u.ID, BookID: 999})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

// TestBorrowBook_ConcurrentBorrows K本可借、N人并发借,恰好K人成功
func TestBorrowBook_ConcurrentBorrows(t *testing.T) {
	const (
		copies  = 3  // K
		readers = 20 // N
	)

	f := newBorrowFixture()
	b := f.addBook(copies)

	users := make([]*user.User, readers)
	for i := range users {
		users[i] = f.userRepo.put(user.NewUser("", "", "$2a$12$hash", user.RoleMember))
	}

	var wg sync.WaitGroup
	results := make(chan error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := f.borrowUC.Execute(context.Background(), BorrowBookRequest{UserID: userID, BookID: b.ID})
			results <- err
		}(users[i].ID)
	}
	wg.Wait()
	close(results)

	succeeded, unavailable := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == book.ErrNoAvailableCopies:
			unavailable++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}

	assert.Equal(t, copies, succeeded, "成功数应等于可借副本数")
	assert.Equal(t, readers-copies, unavailable)

	// 在架数最终为0,不为负
	got, _ := f.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 0, got.AvailableCopies)

	// 未归还记录数等于成功借出数
	open, _ := f.borrowRepo.CountOpenByBook(context.Background(), b.ID)
	assert.Equal(t, int64(copies), open)
}
