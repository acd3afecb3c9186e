package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/infrastructure/config"
)

// Mailer 催还邮件投递
// notifier进程消费MQ中的OverdueNotice事件后调用
type Mailer struct {
	addr string // SMTP地址 host:port
	from string
	auth smtp.Auth
}

// NewMailer 创建邮件投递器
// Username为空时不做SMTP认证(本地MailHog等调试场景)
func NewMailer(cfg config.NotifyConfig) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &Mailer{
		addr: cfg.Addr(),
		from: cfg.From,
		auth: auth,
	}
}

// HandleMessage 处理一条MQ消息(作为mq.Consumer的handler)
// 返回错误时消息会Nack重新入队,所以投递必须幂等(重复邮件可接受)
func (m *Mailer) HandleMessage(body []byte) error {
	var notice borrow.OverdueNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		// 消息格式非法,重新入队也无法处理,记录后丢弃
		log.Printf("[WARN] 逾期通知消息解析失败,已丢弃: %v", err)
		return nil
	}

	if err := m.SendOverdueNotice(&notice); err != nil {
		return fmt.Errorf("发送催还邮件失败: %w", err)
	}

	log.Printf("[INFO] 催还邮件已发送: 用户=%s, 图书=%s, 逾期%d天",
		notice.Username, notice.BookTitle, notice.OverdueDay)
	return nil
}

// SendOverdueNotice 发送催还邮件
func (m *Mailer) SendOverdueNotice(notice *borrow.OverdueNotice) error {
	subject := fmt.Sprintf("【图书馆】《%s》已逾期,请尽快归还", notice.BookTitle)

	var body strings.Builder
	fmt.Fprintf(&body, "%s 您好:\r\n\r\n", notice.Username)
	fmt.Fprintf(&body, "您借阅的《%s》应还时间为 %s,目前已逾期 %d 天。\r\n",
		notice.BookTitle, notice.DueDate.Format("2006-01-02 15:04"), notice.OverdueDay)
	fmt.Fprintf(&body, "逾期每天将产生 %d 元罚金,请尽快归还。\r\n\r\n", borrow.FinePerDay)
	fmt.Fprintf(&body, "图书馆\r\n")

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from, notice.Email, subject, body.String())

	return smtp.SendMail(m.addr, m.auth, m.from, []string{notice.Email}, []byte(msg))
}
