package dto

// CreateBookRequest HTTP新增馆藏请求(管理员)
// 分类取值集合与ISBN格式在领域服务二次校验
type CreateBookRequest struct {
	ISBN            string `json:"isbn" binding:"required" example:"9787115428028"`
	Title           string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author          string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	PublicationYear int    `json:"publication_year" binding:"required,min=1000,max=2100" example:"2017"`
	Genre           string `json:"genre" binding:"required" example:"Technology"`
	TotalCopies     int    `json:"total_copies" binding:"required,min=1,max=9999" example:"5"`
	CoverURL        string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Description     string `json:"description" binding:"max=5000" example:"Go语言入门实战书籍"`
}

// UpdateBookRequest HTTP更新馆藏请求(管理员)
// 零值字段表示不修改;total_copies=0表示不调整副本数
type UpdateBookRequest struct {
	Title           string `json:"title" binding:"omitempty,max=200"`
	Author          string `json:"author" binding:"omitempty,max=100"`
	PublicationYear int    `json:"publication_year" binding:"omitempty,min=1000,max=2100"`
	Genre           string `json:"genre" binding:"omitempty"`
	TotalCopies     int    `json:"total_copies" binding:"omitempty,min=1,max=9999"`
	CoverURL        string `json:"cover_url" binding:"omitempty,url,max=500"`
	Description     string `json:"description" binding:"omitempty,max=5000"`
}

// BookResponse HTTP图书详情响应
type BookResponse struct {
	ID              uint   `json:"id" example:"1"`
	ISBN            string `json:"isbn" example:"9787115428028"`
	Title           string `json:"title" example:"Go语言实战"`
	Author          string `json:"author" example:"威廉·肯尼迪"`
	PublicationYear int    `json:"publication_year" example:"2017"`
	Genre           string `json:"genre" example:"Technology"`
	TotalCopies     int    `json:"total_copies" example:"5"`
	AvailableCopies int    `json:"available_copies" example:"3"`
	CoverURL        string `json:"cover_url,omitempty" example:"https://example.com/cover.jpg"`
	Description     string `json:"description,omitempty" example:"Go语言入门实战书籍"`
	CreatedAt       string `json:"created_at" example:"2026-01-15T10:30:00+08:00"`
}

// BookListItem HTTP图书列表项
// 列表查询不返回Description(减少传输量)
type BookListItem struct {
	ID              uint   `json:"id" example:"1"`
	ISBN            string `json:"isbn" example:"9787115428028"`
	Title           string `json:"title" example:"Go语言实战"`
	Author          string `json:"author" example:"威廉·肯尼迪"`
	PublicationYear int    `json:"publication_year" example:"2017"`
	Genre           string `json:"genre" example:"Technology"`
	TotalCopies     int    `json:"total_copies" example:"5"`
	AvailableCopies int    `json:"available_copies" example:"3"`
	CoverURL        string `json:"cover_url,omitempty"`
}

// ListBooksRequest HTTP图书列表请求
// keyword对书名/作者/ISBN做模糊匹配,genre做精确过滤,两者为AND关系
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	Genre    string `form:"genre" binding:"omitempty,max=50" example:"Technology"`
}
