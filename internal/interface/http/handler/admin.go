package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appborrow "github.com/linkai/library/internal/application/borrow"
	appuser "github.com/linkai/library/internal/application/user"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/interface/http/dto"
	"github.com/linkai/library/pkg/response"
)

// AdminHandler 管理端HTTP处理器
// 账号管理、全量借阅记录查询、逾期巡检触发,全部要求admin角色
type AdminHandler struct {
	listUsersUseCase    *appuser.ListUsersUseCase
	getUserUseCase      *appuser.GetUserUseCase
	setActiveUseCase    *appuser.SetActiveUseCase
	listRecordsUseCase  *appborrow.ListRecordsUseCase
	sweepOverdueUseCase *appborrow.SweepOverdueUseCase
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(
	listUsersUseCase *appuser.ListUsersUseCase,
	getUserUseCase *appuser.GetUserUseCase,
	setActiveUseCase *appuser.SetActiveUseCase,
	listRecordsUseCase *appborrow.ListRecordsUseCase,
	sweepOverdueUseCase *appborrow.SweepOverdueUseCase,
) *AdminHandler {
	return &AdminHandler{
		listUsersUseCase:    listUsersUseCase,
		getUserUseCase:      getUserUseCase,
		setActiveUseCase:    setActiveUseCase,
		listRecordsUseCase:  listRecordsUseCase,
		sweepOverdueUseCase: sweepOverdueUseCase,
	}
}

// ListUsers 用户列表
// @Summary      用户列表
// @Tags         管理
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/auth/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req dto.ListUsersRequest
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

	users, total, err := h.listUsersUseCase.Execute(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]*dto.UserResponse, len(users))
	for i, u := range users {
		items[i] = &dto.UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
			IsActive: u.IsActive,
		}
	}

	response.SuccessWithPage(c, items, total, req.Page, req.PageSize)
}

// GetUser 用户详情
// @Summary      用户详情
// @Tags         管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/auth/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, 40900, "用户ID格式错误")
		return
	}

	u, err := h.getUserUseCase.Execute(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	})
}

// ActivateUser 启用账号
// @Summary      启用账号
// @Description  幂等操作,重复启用返回成功
// @Tags         管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/auth/users/{id}/activate [put]
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateUser 停用账号
// @Summary      停用账号
// @Description  幂等操作;停用后删除会话强制下线,不能再登录和借书
// @Tags         管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/auth/users/{id}/deactivate [put]
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false)
}

func (h *AdminHandler) setActive(c *gin.Context, active bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, 40900, "用户ID格式错误")
		return
	}

	u, err := h.setActiveUseCase.Execute(c.Request.Context(), uint(id), active)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	})
}

// ListRecords 全量借阅记录
// @Summary      借阅记录查询
// @Description  管理员分页查询全部借阅记录,支持按状态/用户/图书过滤
// @Tags         管理
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        status query int false "状态过滤(1借出中 2已归还 3已逾期)"
// @Param        user_id query int false "用户过滤"
// @Param        book_id query int false "图书过滤"
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/borrows [get]
func (h *AdminHandler) ListRecords(c *gin.Context) {
	var req dto.ListRecordsRequest
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

	records, total, err := h.listRecordsUseCase.Execute(c.Request.Context(), appborrow.ListRecordsRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   borrow.Status(req.Status),
		UserID:   req.UserID,
		BookID:   req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, toRecordResponses(records), total, req.Page, req.PageSize)
}

// SweepOverdue 触发逾期巡检
// @Summary      逾期巡检
// @Description  扫描到期未还的记录标记为已逾期并发布催还通知;幂等,可重复触发
// @Tags         管理
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.SweepOverdueResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/borrows/check-overdue [post]
func (h *AdminHandler) SweepOverdue(c *gin.Context) {
	result, err := h.sweepOverdueUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.SweepOverdueResponse{
		Scanned:  result.Scanned,
		Marked:   result.Marked,
		Notified: result.Notified,
		Records:  toRecordResponses(result.Records),
		SweptAt:  result.SweptAt,
	})
}
