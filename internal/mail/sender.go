// Package mail はメール認証コードの発行・送信・検証を提供する。
package mail

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/repository"
)

// codeChars は認証コードに使用する文字。紛らわしい小文字は使わない。
const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeLength は認証コードの文字数。
const codeLength = 4

// Sender はSMTP経由でメールを送るインターフェース。
type Sender interface {
	// Send は件名とHTML本文のメールを1通送る。
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender はgo-mailを使ったSenderの実装。
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	logger   *slog.Logger
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender はSMTPSenderの新しいインスタンスを生成する。
func NewSMTPSender(host string, port int, user, password, from string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		logger:   logger,
	}
}

// Send はSMTPでHTMLメールを1通送る。接続は送信ごとに張り直す。
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("送信元アドレスの設定に失敗しました: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("宛先アドレスの設定に失敗しました: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.user),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("SMTPクライアントの生成に失敗しました: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("メールの送信に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("メールの送信に失敗しました: %w", err)
	}
	return nil
}

// CodeService は認証コードの発行と検証を行う。
type CodeService struct {
	codeRepo repository.EmailCodeRepository
	sender   Sender
	ttl      time.Duration
	now      func() time.Time
	newCode  func() (string, error)
}

// NewCodeService はCodeServiceを生成する。
func NewCodeService(codeRepo repository.EmailCodeRepository, sender Sender, ttl time.Duration) *CodeService {
	return &CodeService{
		codeRepo: codeRepo,
		sender:   sender,
		ttl:      ttl,
		now:      time.Now,
		newCode:  generateCode,
	}
}

// SendCode は認証コードを発行してメールで送り、コードを永続化する。
// メールアドレスは小文字に正規化する。不正な形式のアドレスは拒否する。
func (s *CodeService) SendCode(ctx context.Context, email string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("認証コードの生成に失敗しました: %w", err)
	}

	if err := s.codeRepo.Upsert(ctx, &model.EmailCode{
		Email:         email,
		Code:          code,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     s.now(),
	}); err != nil {
		return fmt.Errorf("認証コードの保存に失敗しました: %w", err)
	}

	body := fmt.Sprintf(
		`<p>認証コード: <strong>%s</strong></p><p>このコードの有効期限は%d分です。</p>`,
		code, int(s.ttl.Minutes()),
	)
	return s.sender.Send(ctx, email, "メールアドレスの確認", body)
}

// VerifyCode は認証コードを検証する。
// メールアドレスは小文字、コードは大文字に正規化して比較する。
// コードが一致しない、または有効期限切れの場合はCODE_MISMATCHを返す。
func (s *CodeService) VerifyCode(ctx context.Context, email, code string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}

	stored, err := s.codeRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("認証コードの取得に失敗しました: %w", err)
	}
	if stored == nil {
		return model.NewCodeMismatchError()
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(normalized)) != 1 {
		return model.NewCodeMismatchError()
	}
	if s.now().Sub(stored.CreatedAt) > s.ttl {
		return model.NewCodeMismatchError()
	}
	return nil
}

// NormalizeEmail はメールアドレスを検証して小文字に正規化する。
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", model.NewInvalidEmailError("アドレスが空です")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", model.NewInvalidEmailError("アドレスの形式が不正です")
	}
	return addr.Address, nil
}

// generateCode は4文字の認証コードを暗号論的乱数で生成する。
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeChars[int(b)%len(codeChars)]
	}
	return string(code), nil
}
