//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 使用方式：
//   wire gen ./cmd/api
// 生成wire_gen.go后,main.go可改为调用InitializeApp()。
// 日常开发仍以main.go的手动组装为准,本文件保证依赖链可被编译期校验。

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	"github.com/linkai/library/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewBorrowRepository,
	mysql.NewTxManager,
	wire.Bind(new(appborrow.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewGetUserUseCase,
	appuser.NewListUsersUseCase,
	appuser.NewSetActiveUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appborrow.NewBorrowBookUseCase,
	appborrow.NewReturnBookUseCase,
	appborrow.NewMyHistoryUseCase,
	appborrow.NewListRecordsUseCase,
	provideSweepOverdueUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewBorrowHandler,
	handler.NewAdminHandler,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideNotifier 从配置创建催还通知发布器
// 未配置MQ时返回nil,巡检只标记不通知
func provideNotifier(cfg *config.Config) (borrow.Notifier, error) {
	if cfg.MQ.URL == "" {
		return nil, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
	if err != nil {
		return nil, err
	}
	return notify.NewOverduePublisher(publisher), nil
}

// provideSweepOverdueUseCase 逾期巡检用例(批大小来自配置)
func provideSweepOverdueUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	notifier borrow.Notifier,
	cfg *config.Config,
) *appborrow.SweepOverdueUseCase {
	return appborrow.NewSweepOverdueUseCase(borrowRepo, bookRepo, userRepo, notifier, cfg.Sweep.BatchSize)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	borrowHandler *handler.BorrowHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	// Swagger文档(wire构建时附带,生产环境建议加访问控制)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, userHandler, bookHandler, borrowHandler, adminHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideNotifier,
		provideGinEngine,
	)
	return nil, nil
}
