// Package notify 催还通知基础设施
//
// 发布侧：逾期巡检标记记录后,把OverdueNotice事件发到RabbitMQ,
// 熔断器保护发布调用(MQ故障时快速失败,不拖垮巡检)。
// 投递侧：独立的notifier进程消费队列并发送邮件(见mailer.go)。
package notify

import (
	"context"
	"log"
	"time"

	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/pkg/circuitbreaker"
	apperrors "github.com/linkai/library/pkg/errors"
	"github.com/linkai/library/pkg/metrics"
	"github.com/linkai/library/pkg/mq"
)

// RoutingKeyOverdue 逾期通知的路由键
const RoutingKeyOverdue = "borrow.overdue"

// OverduePublisher 逾期通知发布者
// 实现borrow.Notifier端口
type OverduePublisher struct {
	publisher *mq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewOverduePublisher 创建逾期通知发布者
// 熔断策略：连续5次发布失败后熔断30秒,半开状态放行3个探测请求
func NewOverduePublisher(publisher *mq.Publisher) *OverduePublisher {
	cb := circuitbreaker.NewCircuitBreaker("overdue-notifier", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("[WARN] 熔断器状态变化: %s %s -> %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})

	return &OverduePublisher{
		publisher: publisher,
		breaker:   cb,
	}
}

// NotifyOverdue 发布逾期通知事件
// 旁路操作：失败只记录日志和指标,不影响逾期标记本身
func (p *OverduePublisher) NotifyOverdue(ctx context.Context, notice *borrow.OverdueNotice) error {
	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(RoutingKeyOverdue, notice)
	})

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.NoticesPublishedTotal, map[string]string{"result": result})
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": "overdue-notifier", "result": result})

	if err != nil {
		if err == circuitbreaker.ErrOpenState {
			return apperrors.New(apperrors.ErrCodeInternal, "通知服务暂时不可用")
		}
		return apperrors.Wrap(err, "发布逾期通知失败")
	}

	return nil
}
