package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appborrow "github.com/linkai/library/internal/application/borrow"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/interface/http/dto"
	"github.com/linkai/library/internal/interface/http/middleware"
	"github.com/linkai/library/pkg/response"
)

// BorrowHandler 借阅HTTP处理器
type BorrowHandler struct {
	borrowBookUseCase *appborrow.BorrowBookUseCase
	returnBookUseCase *appborrow.ReturnBookUseCase
	myHistoryUseCase  *appborrow.MyHistoryUseCase
}

// NewBorrowHandler 创建借阅处理器
func NewBorrowHandler(
	borrowBookUseCase *appborrow.BorrowBookUseCase,
	returnBookUseCase *appborrow.ReturnBookUseCase,
	myHistoryUseCase *appborrow.MyHistoryUseCase,
) *BorrowHandler {
	return &BorrowHandler{
		borrowBookUseCase: borrowBookUseCase,
		returnBookUseCase: returnBookUseCase,
		myHistoryUseCase:  myHistoryUseCase,
	}
}

// BorrowBook 借书
// @Summary      借书
// @Description  借出一本图书,应还时间为借出后14天;同一图书只能有一条未归还记录
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BorrowBookRequest true "借书信息"
// @Success      200 {object} response.Response{data=dto.BorrowBookResponse}
// @Failure      400 {object} response.Response "无可借副本/重复借阅"
// @Failure      401 {object} response.Response "未登录/账号已停用"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/borrows [post]
func (h *BorrowHandler) BorrowBook(c *gin.Context) {
	var req dto.BorrowBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.borrowBookUseCase.Execute(c.Request.Context(), appborrow.BorrowBookRequest{
		UserID: userID,
		BookID: req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BorrowBookResponse{
		RecordID:   result.RecordID,
		BookID:     result.BookID,
		User:       toBorrowerSummary(result.User),
		Book:       toBorrowedBookSummary(result.Book),
		BorrowDate: result.BorrowDate,
		DueDate:    result.DueDate,
		Status:     result.Status,
	})
}

// ReturnBook 还书
// @Summary      还书
// @Description  归还借出的图书,逾期时一次性结算罚金;管理员可代还任意记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} response.Response{data=dto.ReturnBookResponse}
// @Failure      400 {object} response.Response "记录已归还"
// @Failure      403 {object} response.Response "不是本人的借阅记录"
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/borrows/{id}/return [put]
func (h *BorrowHandler) ReturnBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, 40900, "借阅记录ID格式错误")
		return
	}

	result, err := h.returnBookUseCase.Execute(c.Request.Context(), appborrow.ReturnBookRequest{
		RecordID: uint(id),
		UserID:   middleware.MustGetUserID(c),
		IsAdmin:  middleware.IsAdmin(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ReturnBookResponse{
		RecordID:   result.RecordID,
		BookID:     result.BookID,
		ReturnDate: result.ReturnDate,
		Fine:       result.Fine,
		Status:     result.Status,
	})
}

// MyHistory 我的借阅历史
// @Summary      我的借阅历史
// @Description  分页查询当前用户的借阅记录,支持按状态过滤
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        status query int false "状态过滤(1借出中 2已归还 3已逾期)"
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/borrows/my-history [get]
func (h *BorrowHandler) MyHistory(c *gin.Context) {
	var req dto.MyHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	records, total, err := h.myHistoryUseCase.Execute(c.Request.Context(), appborrow.MyHistoryRequest{
		UserID:   middleware.MustGetUserID(c),
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   borrow.Status(req.Status),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, toRecordResponses(records), total, req.Page, req.PageSize)
}

// toBorrowerSummary 应用层用户摘要 → HTTP响应DTO
func toBorrowerSummary(s *appborrow.UserSummary) *dto.BorrowerSummary {
	if s == nil {
		return nil
	}
	return &dto.BorrowerSummary{Username: s.Username, Email: s.Email}
}

// toBorrowedBookSummary 应用层图书摘要 → HTTP响应DTO
func toBorrowedBookSummary(s *appborrow.BookSummary) *dto.BorrowedBookSummary {
	if s == nil {
		return nil
	}
	return &dto.BorrowedBookSummary{Title: s.Title, Author: s.Author, ISBN: s.ISBN}
}

// toRecordResponses 应用层DTO → HTTP响应DTO
func toRecordResponses(records []*appborrow.RecordDTO) []*dto.BorrowRecordResponse {
	out := make([]*dto.BorrowRecordResponse, len(records))
	for i, r := range records {
		out[i] = &dto.BorrowRecordResponse{
			ID:         r.ID,
			UserID:     r.UserID,
			BookID:     r.BookID,
			User:       toBorrowerSummary(r.User),
			Book:       toBorrowedBookSummary(r.Book),
			BorrowDate: r.BorrowDate,
			DueDate:    r.DueDate,
			ReturnDate: r.ReturnDate,
			Status:     r.Status,
			Fine:       r.Fine,
		}
	}
	return out
}
