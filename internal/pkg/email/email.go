package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/qs3c/brand_go_server/config"
)

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">{{.Title}}</h2>
        <p>您好，{{.CompanyName}}！</p>
        {{range .Lines}}<p>{{.}}</p>
        {{end}}<hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`

var bodyTemplate = template.Must(template.New("email").Parse(layout))

type templateData struct {
	Title       string
	CompanyName string
	Lines       []string
}

// Sender 发送邮件的抽象，worker 通过它发送通知
type Sender interface {
	SendWelcome(to, companyName string) error
	SendSubscriptionActivated(to, companyName, planName string) error
	SendSubscriptionCanceled(to, companyName, planName string) error
}

type Service struct {
	cfg  *config.EmailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// SendWelcome 发送欢迎邮件
func (s *Service) SendWelcome(to, companyName string) error {
	return s.render(to, "欢迎加入 - 品牌平台", templateData{
		Title:       "欢迎加入！",
		CompanyName: companyName,
		Lines: []string{
			"感谢您注册品牌平台，您的品牌空间已经创建。",
			"选择一个套餐即可开启大使和品牌功能。",
		},
	})
}

// SendSubscriptionActivated 发送订阅开通邮件
func (s *Service) SendSubscriptionActivated(to, companyName, planName string) error {
	return s.render(to, "订阅已开通 - 品牌平台", templateData{
		Title:       "订阅已开通",
		CompanyName: companyName,
		Lines: []string{
			fmt.Sprintf("您的 %s 套餐已生效，相关功能现在可以使用。", planName),
			"发票可以在账单页面查看。",
		},
	})
}

// SendSubscriptionCanceled 发送订阅取消邮件
func (s *Service) SendSubscriptionCanceled(to, companyName, planName string) error {
	return s.render(to, "订阅已取消 - 品牌平台", templateData{
		Title:       "订阅已取消",
		CompanyName: companyName,
		Lines: []string{
			fmt.Sprintf("您的 %s 套餐已取消。", planName),
			"如需继续使用，请重新选择套餐。",
		},
	})
}

func (s *Service) render(to, subject string, data templateData) error {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return s.sendHTML(to, subject, buf.String())
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	var msg strings.Builder
	// 固定顺序写入头部
	for _, h := range [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	} {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
