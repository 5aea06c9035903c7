package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
)

// Mailer sends the admin verification emails. All sends go to the master
// address configured at startup.
type Mailer struct {
	host        string
	port        int
	email       string
	password    string
	masterEmail string
	baseURL     string
}

func New(host string, port int, email, password, masterEmail, baseURL string) (*Mailer, error) {
	if host == "" || email == "" || password == "" {
		return nil, errors.New("smtp host, email and password are required")
	}
	if masterEmail == "" {
		return nil, errors.New("master email is required")
	}
	return &Mailer{
		host:        host,
		port:        port,
		email:       email,
		password:    password,
		masterEmail: masterEmail,
		baseURL:     baseURL,
	}, nil
}

// SendAdminVerification asks the master account to approve or reject a
// pending admin signup.
func (m *Mailer) SendAdminVerification(applicantEmail, applicantName string, userID int64) error {
	approve := fmt.Sprintf("%s/api/auth/verify-admin?user_id=%d&decision=approve", m.baseURL, userID)
	reject := fmt.Sprintf("%s/api/auth/verify-admin?user_id=%d&decision=reject", m.baseURL, userID)

	body := fmt.Sprintf(
		"A new admin account is awaiting verification.\r\n\r\n"+
			"Name:  %s\r\nEmail: %s\r\n\r\n"+
			"Approve: %s\r\nReject:  %s\r\n",
		applicantName, applicantEmail, approve, reject)

	msg := []byte(
		"From: " + m.email + "\r\n" +
			"To: " + m.masterEmail + "\r\n" +
			"Subject: Admin account verification required\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" + body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.email, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.email, []string{m.masterEmail}, msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}
