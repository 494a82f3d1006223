package email

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/gomail.v2"

	"coursepay/internal/application/enrollment/usecases"
	"coursepay/internal/shared/config"
)

// EnrolmentNotifier sends the enrolment mails over SMTP. It implements
// usecases.EnrolmentNotifier; every send is synchronous here and the caller
// decides whether to run it in the background.
type EnrolmentNotifier struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

var _ usecases.EnrolmentNotifier = (*EnrolmentNotifier)(nil)

func NewEnrolmentNotifier(cfg config.EmailConfig) *EnrolmentNotifier {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)

	return &EnrolmentNotifier{
		cfg:    cfg,
		dialer: dialer,
	}
}

func (s *EnrolmentNotifier) NotifyStudentEnrolled(_ context.Context, n usecases.EnrolmentNotification) error {
	subject := fmt.Sprintf("Welcome to %s", n.Course.FullName)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to %s!</h2>
			<p>Hi %s,</p>
			<p>Your payment of %s was received and you are now enrolled in <b>%s</b>.</p>
			<p>Transaction reference: %s</p>
		</body>
		</html>
	`, n.Course.FullName, n.User.FullName, n.Amount.String(), n.Course.FullName, n.Reference)

	plainBody := fmt.Sprintf(`
Welcome to %s!

Hi %s,

Your payment of %s was received and you are now enrolled in %s.

Transaction reference: %s
	`, n.Course.FullName, n.User.FullName, n.Amount.String(), n.Course.FullName, n.Reference)

	return s.sendEmail([]string{n.User.Email}, subject, htmlBody, plainBody)
}

func (s *EnrolmentNotifier) NotifyTeacherEnrolled(_ context.Context, n usecases.EnrolmentNotification) error {
	if n.Teacher == nil {
		return nil
	}

	subject := fmt.Sprintf("New enrolment in %s", n.Course.ShortName)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>New enrolment</h2>
			<p>%s (%s) has enrolled in your course <b>%s</b>.</p>
		</body>
		</html>
	`, n.User.FullName, n.User.Email, n.Course.FullName)

	plainBody := fmt.Sprintf(`
New enrolment

%s (%s) has enrolled in your course %s.
	`, n.User.FullName, n.User.Email, n.Course.FullName)

	return s.sendEmail([]string{n.Teacher.Email}, subject, htmlBody, plainBody)
}

func (s *EnrolmentNotifier) NotifyAdminsEnrolled(_ context.Context, n usecases.EnrolmentNotification) error {
	if len(s.cfg.AdminAddrs) == 0 {
		return nil
	}

	subject := fmt.Sprintf("New enrolment in %s", n.Course.ShortName)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>New enrolment</h2>
			<p>%s (%s) has enrolled in <b>%s</b> for %s.</p>
			<p>Transaction reference: %s</p>
		</body>
		</html>
	`, n.User.FullName, n.User.Email, n.Course.FullName, n.Amount.String(), n.Reference)

	plainBody := fmt.Sprintf(`
New enrolment

%s (%s) has enrolled in %s for %s.

Transaction reference: %s
	`, n.User.FullName, n.User.Email, n.Course.FullName, n.Amount.String(), n.Reference)

	return s.sendEmail(s.cfg.AdminAddrs, subject, htmlBody, plainBody)
}

func (s *EnrolmentNotifier) NotifyAdminsPaymentError(_ context.Context, subject string, details map[string]interface{}) error {
	if len(s.cfg.AdminAddrs) == 0 {
		return nil
	}

	dump, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		dump = []byte(fmt.Sprintf("%v", details))
	}

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Payment problem</h2>
			<p>%s</p>
			<pre>%s</pre>
			<p>The payment was NOT turned into an enrolment. Please investigate and refund if appropriate.</p>
		</body>
		</html>
	`, subject, dump)

	plainBody := fmt.Sprintf(`
Payment problem

%s

%s

The payment was NOT turned into an enrolment. Please investigate and refund if appropriate.
	`, subject, dump)

	return s.sendEmail(s.cfg.AdminAddrs, "Payment problem: "+subject, htmlBody, plainBody)
}

func (s *EnrolmentNotifier) sendEmail(to []string, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.FromAddress, s.cfg.FromName))
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
