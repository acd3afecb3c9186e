package dto

// BorrowBookRequest HTTP借书请求
type BorrowBookRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}

// BorrowerSummary 借阅人摘要(随记录返回)
type BorrowerSummary struct {
	Username string `json:"username" example:"reader01"`
	Email    string `json:"email" example:"reader01@example.com"`
}

// BorrowedBookSummary 图书摘要(随记录返回)
type BorrowedBookSummary struct {
	Title  string `json:"title" example:"Go语言实战"`
	Author string `json:"author" example:"William Kennedy"`
	ISBN   string `json:"isbn" example:"9787115428028"`
}

// BorrowRecordResponse HTTP借阅记录响应
type BorrowRecordResponse struct {
	ID         uint                 `json:"id" example:"1"`
	UserID     uint                 `json:"user_id" example:"1"`
	BookID     uint                 `json:"book_id" example:"1"`
	User       *BorrowerSummary     `json:"user,omitempty"`
	Book       *BorrowedBookSummary `json:"book,omitempty"`
	BorrowDate string               `json:"borrow_date" example:"2026-01-15T10:30:00+08:00"`
	DueDate    string               `json:"due_date" example:"2026-01-29T10:30:00+08:00"`
	ReturnDate string               `json:"return_date,omitempty"`
	Status     string               `json:"status" example:"借出中"`
	Fine       int64                `json:"fine" example:"0"` // 罚金(元),归还时一次性结算
}

// BorrowBookResponse HTTP借书响应
type BorrowBookResponse struct {
	RecordID   uint                 `json:"record_id" example:"1"`
	BookID     uint                 `json:"book_id" example:"1"`
	User       *BorrowerSummary     `json:"user"`
	Book       *BorrowedBookSummary `json:"book"`
	BorrowDate string               `json:"borrow_date" example:"2026-01-15T10:30:00+08:00"`
	DueDate    string               `json:"due_date" example:"2026-01-29T10:30:00+08:00"`
	Status     string               `json:"status" example:"借出中"`
}

// ReturnBookResponse HTTP还书响应
type ReturnBookResponse struct {
	RecordID   uint   `json:"record_id" example:"1"`
	BookID     uint   `json:"book_id" example:"1"`
	ReturnDate string `json:"return_date" example:"2026-01-20T09:00:00+08:00"`
	Fine       int64  `json:"fine" example:"10"`
	Status     string `json:"status" example:"已归还"`
}

// MyHistoryRequest HTTP借阅历史请求
type MyHistoryRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Status   int `form:"status" binding:"omitempty,oneof=1 2 3" example:"1"` // 1借出中 2已归还 3已逾期
}

// ListRecordsRequest HTTP借阅记录查询请求(管理员)
type ListRecordsRequest struct {
	Page     int  `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int  `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Status   int  `form:"status" binding:"omitempty,oneof=1 2 3"`
	UserID   uint `form:"user_id" binding:"omitempty"`
	BookID   uint `form:"book_id" binding:"omitempty"`
}

// SweepOverdueResponse HTTP逾期巡检响应(管理员)
type SweepOverdueResponse struct {
	Scanned  int                     `json:"scanned" example:"12"`
	Marked   int                     `json:"marked" example:"10"`
	Notified int                     `json:"notified" example:"10"`
	Records  []*BorrowRecordResponse `json:"records"` // 本次被标记为逾期的记录
	SweptAt  string                  `json:"swept_at" example:"2026-01-20T03:00:00+08:00"`
}
