package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"charity-backend/internal/domain"
	"charity-backend/pkg/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type Options struct {
	Site        string // 邮件署名
	Currency    string // 金额前缀，如 KES
	FrontendURL string // 重置链接前缀
	ResetTTL    time.Duration
}

// Notifier 把领域事件渲染成邮件并交给 Mailer
type Notifier struct {
	mailer Mailer
	opt    Options
}

func NewNotifier(m Mailer, opt Options) *Notifier {
	if opt.Site == "" {
		opt.Site = "CharityConnect"
	}
	if opt.Currency == "" {
		opt.Currency = "KES"
	}
	return &Notifier{mailer: m, opt: opt}
}

func (n *Notifier) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (n *Notifier) send(ctx context.Context, to, subject, name string, data any) error {
	body, err := n.render(name, data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{To: to, Subject: subject, Body: body})
}

func (n *Notifier) Welcome(ctx context.Context, u *domain.User, donorName string) error {
	return n.send(ctx, u.Email, fmt.Sprintf("Welcome to %s, %s!", n.opt.Site, donorName), "welcome.tmpl", map[string]any{
		"Name":     donorName,
		"Username": u.Username,
		"Email":    u.Email,
		"Site":     n.opt.Site,
	})
}

func (n *Notifier) DonationConfirmation(ctx context.Context, to, donorName, campaignTitle string, amount decimal.Decimal, at time.Time) error {
	return n.send(ctx, to, "Thank you for your donation to "+campaignTitle, "donation_confirmation.tmpl", map[string]any{
		"Name":          donorName,
		"CampaignTitle": campaignTitle,
		"Amount":        FormatAmount(n.opt.Currency, amount),
		"Date":          at.Format("January 02, 2006 at 03:04 PM"),
		"TransactionID": utils.ShortRef(),
		"Site":          n.opt.Site,
	})
}

// ResetURL {frontend}/reset-password/{uid}/{token}/
func (n *Notifier) ResetURL(uid, token string) string {
	return strings.TrimRight(n.opt.FrontendURL, "/") + "/reset-password/" + uid + "/" + token + "/"
}

func (n *Notifier) PasswordReset(ctx context.Context, u *domain.User, uid, token string) error {
	name := u.FirstName
	if name == "" {
		name = u.Username
	}
	return n.send(ctx, u.Email, "Password Reset Request - "+n.opt.Site, "password_reset.tmpl", map[string]any{
		"Name":     name,
		"Site":     n.opt.Site,
		"ResetURL": n.ResetURL(uid, token),
		"TTL":      n.opt.ResetTTL.String(),
	})
}
