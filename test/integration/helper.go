package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 测试对象是运行中的API服务(默认localhost:8080),服务不可达时整组跳过。
// 管理员账号通过环境变量提供:
//   LIBRARY_TEST_ADMIN_USER / LIBRARY_TEST_ADMIN_PASSWORD

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// RequireServer 服务不可达时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "localhost:8080", time.Second)
	if err != nil {
		t.Skipf("API服务不可达,跳过集成测试: %v", err)
	}
	conn.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// BorrowData 借书响应数据
type BorrowData struct {
	RecordID   uint   `json:"record_id"`
	BookID     uint   `json:"book_id"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
	Status     string `json:"status"`
}

// ReturnData 还书响应数据
type ReturnData struct {
	RecordID   uint   `json:"record_id"`
	BookID     uint   `json:"book_id"`
	ReturnDate string `json:"return_date"`
	Fine       int64  `json:"fine"`
	Status     string `json:"status"`
}

// doJSON 发送HTTP请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPost, url, data, token)
}

// PutJSON 发送PUT请求
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPut, url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodGet, url, nil, token)
}

// GenerateTestUsername 生成唯一的测试用户名
func GenerateTestUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano()%1000000000)
}

// GenerateTestISBN 生成唯一的测试ISBN(13位)
func GenerateTestISBN() string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("978%010d", timestamp%10000000000)
}

// RegisterTestUser 注册读者账号并登录,返回Token
func RegisterTestUser(t *testing.T, prefix string) (username string, token string) {
	t.Helper()

	username = GenerateTestUsername(prefix)
	registerReq := map[string]string{
		"username": username,
		"email":    username + "@test.com",
		"password": "Test1234",
	}

	registerResp := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"username": username,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return username, loginData.AccessToken
}

// AdminToken 用环境变量里的管理员账号登录;未配置时跳过测试
func AdminToken(t *testing.T) string {
	t.Helper()

	adminUser := os.Getenv("LIBRARY_TEST_ADMIN_USER")
	adminPass := os.Getenv("LIBRARY_TEST_ADMIN_PASSWORD")
	if adminUser == "" || adminPass == "" {
		t.Skip("未配置管理员测试账号(LIBRARY_TEST_ADMIN_USER/PASSWORD),跳过")
	}

	loginResp := PostJSON(t, BaseURL+"/auth/login", map[string]string{
		"username": adminUser,
		"password": adminPass,
	}, "")
	require.Equal(t, 0, loginResp.Code, "管理员登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return loginData.AccessToken
}

// CreateTestBook 管理员新增馆藏图书,返回图书ID
func CreateTestBook(t *testing.T, adminToken string, title string, copies int) uint {
	t.Helper()

	bookReq := map[string]interface{}{
		"isbn":             GenerateTestISBN(),
		"title":            title,
		"author":           "测试作者",
		"publication_year": 2020,
		"genre":            "Technology",
		"total_copies":     copies,
		"description":      "集成测试用图书",
	}

	bookResp := PostJSON(t, BaseURL+"/books", bookReq, adminToken)
	require.Equal(t, 0, bookResp.Code, "新增图书失败: %s", bookResp.Message)

	var bookData BookData
	err := json.Unmarshal(bookResp.Data, &bookData)
	require.NoError(t, err, "解析图书响应失败")

	return bookData.ID
}
