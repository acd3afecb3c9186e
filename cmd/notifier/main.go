package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/linkai/library/internal/infrastructure/config"
	"github.com/linkai/library/internal/infrastructure/notify"
	"github.com/linkai/library/pkg/mq"
)

// main 催还通知消费进程入口
// 订阅MQ上的逾期事件(borrow.overdue),组装催还邮件经SMTP投递。
// 与API进程分离部署:邮件服务抖动不影响借还主链路。
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if cfg.MQ.URL == "" {
		log.Fatal("未配置MQ,催还通知进程无法启动")
	}

	consumer, err := mq.NewConsumer(
		cfg.MQ.URL,
		cfg.MQ.Exchange,
		cfg.MQ.ExchangeType,
		cfg.MQ.NoticeQueue,
		[]string{notify.RoutingKeyOverdue},
	)
	if err != nil {
		log.Fatalf("连接MQ失败: %v", err)
	}
	defer consumer.Close()

	mailer := notify.NewMailer(cfg.Notify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 退出信号处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("收到退出信号,正在停止消费...")
		cancel()
	}()

	fmt.Printf("✓ 催还通知进程启动: exchange=%s, queue=%s\n", cfg.MQ.Exchange, cfg.MQ.NoticeQueue)

	if err := consumer.Consume(ctx, mailer.HandleMessage); err != nil && err != context.Canceled {
		log.Fatalf("消费异常退出: %v", err)
	}
	log.Println("催还通知进程已退出")
}
