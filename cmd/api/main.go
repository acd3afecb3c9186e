package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appbook "github.com/linkai/library/internal/application/book"
	appborrow "github.com/linkai/library/internal/application/borrow"
	appuser "github.com/linkai/library/internal/application/user"
	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/domain/user"
	"github.com/linkai/library/internal/infrastructure/config"
	"github.com/linkai/library/internal/infrastructure/notify"
	"github.com/linkai/library/internal/infrastructure/persistence/mysql"
	"github.com/linkai/library/internal/infrastructure/persistence/redis"
	"github.com/linkai/library/internal/interface/http/handler"
	"github.com/linkai/library/internal/interface/http/middleware"
	"github.com/linkai/library/pkg/jwt"
	"github.com/linkai/library/pkg/metrics"
	"github.com/linkai/library/pkg/mq"
	"github.com/linkai/library/pkg/response"
	"github.com/linkai/library/pkg/tracing"
)

// main API服务入口
// 依赖注入链（手动组装）：Repository ← Service ← UseCase ← Handler
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化指标与追踪
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("library-api", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("[WARN] 关闭追踪失败: %v", err)
			}
		}()
	}

	// 3. 初始化数据库与Redis
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化MQ发布器（可选：未配置时只标记逾期不发通知）
	var notifier borrow.Notifier
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
		if err != nil {
			log.Printf("[WARN] 连接MQ失败,催还通知不可用: %v", err)
		} else {
			defer publisher.Close()
			notifier = notify.NewOverduePublisher(publisher)
		}
	}

	// 5. 依赖注入（手动组装）

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	borrowRepo := mysql.NewBorrowRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	getUserUseCase := appuser.NewGetUserUseCase(userRepo)
	listUsersUseCase := appuser.NewListUsersUseCase(userRepo)
	setActiveUseCase := appuser.NewSetActiveUseCase(userService, sessionStore)

	createBookUseCase := appbook.NewCreateBookUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookService, borrowRepo)

	borrowBookUseCase := appborrow.NewBorrowBookUseCase(borrowRepo, bookRepo, userRepo, txManager)
	returnBookUseCase := appborrow.NewReturnBookUseCase(borrowRepo, bookRepo, txManager)
	myHistoryUseCase := appborrow.NewMyHistoryUseCase(borrowRepo, bookRepo, userRepo)
	listRecordsUseCase := appborrow.NewListRecordsUseCase(borrowRepo, bookRepo, userRepo)
	sweepOverdueUseCase := appborrow.NewSweepOverdueUseCase(borrowRepo, bookRepo, userRepo, notifier, cfg.Sweep.BatchSize)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, getUserUseCase)
	bookHandler := handler.NewBookHandler(createBookUseCase, getBookUseCase, listBooksUseCase, updateBookUseCase, deleteBookUseCase)
	borrowHandler := handler.NewBorrowHandler(borrowBookUseCase, returnBookUseCase, myHistoryUseCase)
	adminHandler := handler.NewAdminHandler(listUsersUseCase, getUserUseCase, setActiveUseCase, listRecordsUseCase, sweepOverdueUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore, userRepo)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	registerRoutes(r, userHandler, bookHandler, borrowHandler, adminHandler, authMiddleware)

	// 7. 定时逾期巡检（配置开启时）
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Sweep.Enabled {
		go runSweepLoop(sweepCtx, sweepOverdueUseCase, cfg.Sweep.Interval)
	}

	// 8. 启动HTTP服务（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", srv.Addr)
		fmt.Printf("   健康检查: http://localhost%s/healthz\n", srv.Addr)
		fmt.Printf("   指标采集: http://localhost%s/metrics\n", srv.Addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("收到退出信号,正在关闭服务...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] 服务关闭超时: %v", err)
	}
	log.Println("服务已退出")
}

// runSweepLoop 定时逾期巡检循环
// 启动时先跑一轮,之后按配置周期执行;单轮失败只记录日志
func runSweepLoop(ctx context.Context, uc *appborrow.SweepOverdueUseCase, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep := func() {
		if _, err := uc.Execute(ctx); err != nil {
			log.Printf("[WARN] 定时逾期巡检失败: %v", err)
		}
	}

	sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	borrowHandler *handler.BorrowHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查与指标
	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// 认证模块
		auth := v1.Group("/auth")
		{
			// 公开接口
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)

			// 需要登录
			auth.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
			auth.GET("/me", authMiddleware.RequireAuth(), userHandler.GetMe)

			// 账号管理（管理员）
			users := auth.Group("/users", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
			{
				users.GET("", adminHandler.ListUsers)
				users.GET("/:id", adminHandler.GetUser)
				users.PUT("/:id/activate", adminHandler.ActivateUser)
				users.PUT("/:id/deactivate", adminHandler.DeactivateUser)
			}
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 公开接口
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)

			// 馆藏管理（管理员）
			books.POST("", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), bookHandler.CreateBook)
			books.PUT("/:id", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), bookHandler.UpdateBook)
			books.DELETE("/:id", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), bookHandler.DeleteBook)
		}

		// 借阅模块（需要登录）
		borrows := v1.Group("/borrows")
		borrows.Use(authMiddleware.RequireAuth())
		{
			borrows.POST("", borrowHandler.BorrowBook)
			borrows.PUT("/:id/return", borrowHandler.ReturnBook)
			borrows.GET("/my-history", borrowHandler.MyHistory)

			// 管理员
			borrows.GET("", authMiddleware.RequireAdmin(), adminHandler.ListRecords)
			borrows.POST("/check-overdue", authMiddleware.RequireAdmin(), adminHandler.SweepOverdue)
		}
	}
}
