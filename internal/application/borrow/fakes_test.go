package borrow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/domain/user"
	apperrors "github.com/linkai/library/pkg/errors"
)

// 内存版仓储实现,用于用例单元测试。
// fakeTxManager用互斥锁串行化"事务",模拟SELECT FOR UPDATE下
// 同一本书的并发借还在行锁上排队的效果。

type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// ---------------------------------------------------------

type fakeBookRepo struct {
	mu     sync.Mutex
	books  map[uint]*book.Book
	nextID uint
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uint]*book.Book), nextID: 1}
}

func (r *fakeBookRepo) put(b *book.Book) *book.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == 0 {
		b.ID = r.nextID
		r.nextID++
	}
	cp := *b
	r.books[b.ID] = &cp
	return b
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.put(b)
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*book.Book
	for _, b := range r.books {
		cp := *b
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	// 事务已由fakeTxManager串行化,直接读取即可
	return r.FindByID(ctx, id)
}

func (r *fakeBookRepo) AdjustAvailable(ctx context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	next := b.AvailableCopies + delta
	if next < 0 {
		return book.ErrNoAvailableCopies
	}
	if next > b.TotalCopies {
		return book.ErrCopyCountDrift
	}
	b.AvailableCopies = next
	return nil
}

// ---------------------------------------------------------

type fakeBorrowRepo struct {
	mu      sync.Mutex
	records map[uint]*borrow.Record
	nextID  uint
}

func newFakeBorrowRepo() *fakeBorrowRepo {
	return &fakeBorrowRepo{records: make(map[uint]*borrow.Record), nextID: 1}
}

func (r *fakeBorrowRepo) put(rec *borrow.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == 0 {
		rec.ID = r.nextID
		r.nextID++
	}
	cp := *rec
	r.records[rec.ID] = &cp
}

func (r *fakeBorrowRepo) Create(ctx context.Context, rec *borrow.Record) error {
	r.put(rec)
	return nil
}

func (r *fakeBorrowRepo) FindByID(ctx context.Context, id uint) (*borrow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, borrow.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeBorrowRepo) LockByID(ctx context.Context, id uint) (*borrow.Record, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBorrowRepo) FindOpenByUserAndBook(ctx context.Context, userID, bookID uint) (*borrow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.UserID == userID && rec.BookID == bookID && rec.Status.IsOpen() {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, borrow.ErrRecordNotFound
}

func (r *fakeBorrowRepo) CountOpenByBook(ctx context.Context, bookID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.records {
		if rec.BookID == bookID && rec.Status.IsOpen() {
			n++
		}
	}
	return n, nil
}

func (r *fakeBorrowRepo) Update(ctx context.Context, rec *borrow.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return borrow.ErrRecordNotFound
	}
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *fakeBorrowRepo) ListByUser(ctx context.Context, userID uint, params borrow.ListParams) ([]*borrow.Record, int64, error) {
	params.UserID = userID
	return r.List(ctx, params)
}

func (r *fakeBorrowRepo) List(ctx context.Context, params borrow.ListParams) ([]*borrow.Record, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*borrow.Record
	for _, rec := range r.records {
		if params.UserID != 0 && rec.UserID != params.UserID {
			continue
		}
		if params.BookID != 0 && rec.BookID != params.BookID {
			continue
		}
		if params.Status != 0 && rec.Status != params.Status {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBorrowRepo) FindDueBefore(ctx context.Context, deadline time.Time, limit int) ([]*borrow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*borrow.Record
	for _, rec := range r.records {
		if rec.Status == borrow.StatusBorrowed && rec.DueDate.Before(deadline) {
			cp := *rec
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeBorrowRepo) MarkOverdue(ctx context.Context, id uint, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, nil
	}
	// 条件更新语义:仅"借出中"可标记,归还优先
	if rec.Status != borrow.StatusBorrowed {
		return false, nil
	}
	rec.Status = borrow.StatusOverdue
	rec.UpdatedAt = now
	return true, nil
}

// ---------------------------------------------------------

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*user.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*user.User), nextID: 1}
}

func (r *fakeUserRepo) put(u *user.User) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.put(u)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, page, pageSize int) ([]*user.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

// ---------------------------------------------------------

type fakeNotifier struct {
	mu       sync.Mutex
	notices  []*borrow.OverdueNotice
	failures int // 前failures次发布返回错误,模拟MQ故障
	calls    int
}

func (n *fakeNotifier) NotifyOverdue(ctx context.Context, notice *borrow.OverdueNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.calls <= n.failures {
		return errors.New("publish: connection refused")
	}
	n.notices = append(n.notices, notice)
	return nil
}
