package notifier

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// MailConfig SMTP 配置，AdminTo 为接收注册提醒的管理员邮箱。
type MailConfig struct {
	Host     string   `yaml:"host" json:"host"`
	Port     int      `yaml:"port" json:"port"`
	Username string   `yaml:"username" json:"username"`
	Password string   `yaml:"password" json:"password"`
	From     string   `yaml:"from" json:"from"`
	AdminTo  []string `yaml:"admin_to" json:"admin_to"`
	Timeout  string   `yaml:"timeout" json:"timeout"`
}

// Enabled 报告配置是否足以发送提醒。
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.Port != 0 && c.From != "" && len(c.AdminTo) > 0
}

// Mail 一封纯文本邮件。
type Mail struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer 发送邮件，必须遵守 ctx 的截止时间。
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPMailer 每次发送建立一条连接，连接受 ctx 截止时间约束。
type SMTPMailer struct {
	host     string
	addr     string
	username string
	password string
	timeout  time.Duration
	dialer   net.Dialer
}

// NewSMTPMailer 创建 SMTPMailer，未配置超时时默认 10 秒。
func NewSMTPMailer(cfg MailConfig) *SMTPMailer {
	timeout := 10 * time.Second
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		timeout = d
	}
	return &SMTPMailer{
		host:     cfg.Host,
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
	}
}

// Send 投递邮件；ctx 取消或超时会立即中断连接。
func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if len(mail.To) == 0 {
		return errors.New("send mail: no recipients")
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conn, err := m.dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := m.deliver(conn, mail); err != nil {
		_ = conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("send mail: %w", ctxErr)
		}
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) deliver(conn net.Conn, mail Mail) error {
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}
	if m.username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
			return err
		}
	}
	if err := c.Mail(mail.From); err != nil {
		return err
	}
	for _, to := range mail.To {
		if err := c.Rcpt(to); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(mail.render())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (m Mail) render() string {
	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return b.String()
}
