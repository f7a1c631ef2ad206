package emailService

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sirupsen/logrus"
)

const (
	subjectPaymentReceipt  = "Your barbershop payment receipt"
	templatePaymentReceipt = "payment_receipt.html"
	defaultSMTPPort        = "587"
	defaultQueueSize       = 100
)

//go:embed templates/*.html
var templatesFS embed.FS

type Config struct {
	From      string
	Password  string
	SMTPHost  string
	SMTPPort  string
	QueueSize int
}

// Enabled reports whether enough SMTP settings are present to deliver mail.
func (c Config) Enabled() bool {
	return c.From != "" && c.Password != "" && c.SMTPHost != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailTask struct {
	to      string
	receipt domain.Receipt
}

// ReceiptService renders payment receipts and delivers them from a single
// background worker. Without SMTP settings receipts are only logged.
type ReceiptService struct {
	cfg       Config
	templates *template.Template
	send      sendFunc
	log       logrus.FieldLogger

	mu        sync.RWMutex
	closed    bool
	taskQueue chan EmailTask
	done      chan struct{}
}

func NewReceiptService(cfg Config, log logrus.FieldLogger) (*ReceiptService, error) {
	return newReceiptService(cfg, log, smtp.SendMail)
}

func newReceiptService(cfg Config, log logrus.FieldLogger, send sendFunc) (*ReceiptService, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	if cfg.SMTPPort == "" {
		cfg.SMTPPort = defaultSMTPPort
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	s := &ReceiptService{
		cfg:       cfg,
		templates: tmpl,
		send:      send,
		log:       log.WithField("component", "email"),
		taskQueue: make(chan EmailTask, cfg.QueueSize),
		done:      make(chan struct{}),
	}
	go s.worker()
	return s, nil
}

func (s *ReceiptService) worker() {
	defer close(s.done)
	for task := range s.taskQueue {
		if err := s.deliver(task); err != nil {
			s.log.WithError(err).WithField("reference", task.receipt.Reference).Error("Error sending receipt email")
		}
	}
}

// QueueReceipt never blocks the caller; when the queue is full the receipt is dropped.
func (s *ReceiptService) QueueReceipt(to string, receipt domain.Receipt) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.WithField("reference", receipt.Reference).Warn("Receipt service closed, receipt not sent")
		return
	}
	select {
	case s.taskQueue <- EmailTask{to: to, receipt: receipt}:
	default:
		s.log.WithField("reference", receipt.Reference).Warn("Receipt queue full, receipt not sent")
	}
}

// Close stops accepting receipts and waits for queued ones to be handled.
func (s *ReceiptService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.taskQueue)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *ReceiptService) deliver(task EmailTask) error {
	body, err := s.renderReceipt(task.receipt)
	if err != nil {
		return err
	}

	if !s.cfg.Enabled() {
		s.log.WithFields(logrus.Fields{
			"to":        task.to,
			"reference": task.receipt.Reference,
			"total":     task.receipt.Total,
		}).Info("SMTP not configured, receipt logged instead of sent")
		return nil
	}

	message := []byte("Subject: " + subjectPaymentReceipt + "\r\n" +
		"MIME-version: 1.0;\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n" +
		body)

	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.SMTPHost)
	if err := s.send(s.cfg.SMTPHost+":"+s.cfg.SMTPPort, auth, s.cfg.From, []string{task.to}, message); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

func (s *ReceiptService) renderReceipt(receipt domain.Receipt) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templatePaymentReceipt, receipt); err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}
