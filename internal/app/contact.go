package app

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"
)

// ContactSubjects are the choices offered on the contact form.
var ContactSubjects = []struct{ Value, Label string }{
	{"vacancy", "宿泊施設について"},
	{"support", "支援制度について"},
	{"visit", "見学の予約"},
	{"other", "その他"},
}

type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

func (m ContactMessage) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(m.Name) == "" {
		errs["name"] = "お名前を入力してください"
	}
	if e := strings.TrimSpace(m.Email); e != "" {
		if _, err := mail.ParseAddress(e); err != nil {
			errs["email"] = "メールアドレスの形式が正しくありません"
		}
	}
	known := false
	for _, s := range ContactSubjects {
		known = known || s.Value == m.Subject
	}
	if !known {
		errs["subject"] = "お問い合わせ種別を選択してください"
	}
	if strings.TrimSpace(m.Message) == "" {
		errs["message"] = "お問い合わせ内容を入力してください"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SubmitContact validates and records a contact request. Messages are only
// logged; there is no mailbox behind the form.
func SubmitContact(ctx context.Context, m ContactMessage) error {
	if err := m.Validate(); err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("subject", m.Subject).
		Str("name", m.Name).
		Bool("has_email", m.Email != "").
		Bool("has_phone", m.Phone != "").
		Int("length", len([]rune(m.Message))).
		Msg("contact request received")
	return nil
}
