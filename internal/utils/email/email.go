package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/ziptalk-calculator/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendUploadNotification tells an administrator that competition data was uploaded
func (s *Sender) SendUploadNotification(to, fileName string, count int, avgRate float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("[집톡] 경쟁률 데이터 업로드: %s", fileName)

	body := "안녕하세요,\n\n"
	body += fmt.Sprintf(
		"경쟁률 데이터 파일 %s이(가) 업로드되었습니다.\n"+
			"등록된 단지 수: %d\n"+
			"평균 경쟁률: %.2f : 1\n"+
			"업로드 시각: %s\n",
		fileName, count, avgRate, time.Now().Format("2006-01-02 15:04:05"),
	)
	body += "\n집톡 청약 계산기"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send upload notification to %s: %v", to, err)
		return fmt.Errorf("failed to send upload notification: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
