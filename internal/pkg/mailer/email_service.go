package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLeadAlert(toEmail, conversationId, leadEmail, leadPhone string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

// SendLeadAlert notifies sales that the assistant passively captured
// contact info in a conversation.
func (s *emailService) SendLeadAlert(toEmail, conversationId, leadEmail, leadPhone string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "New lead captured by EiryBot")

	if leadEmail == "" {
		leadEmail = "-"
	}
	if leadPhone == "" {
		leadPhone = "-"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>EiryBot captured a new lead</h2>
			<p>A visitor shared contact info while chatting with the assistant.</p>
			<ul>
				<li><b>Email:</b> %s</li>
				<li><b>Phone:</b> %s</li>
				<li><b>Conversation:</b> %s</li>
			</ul>
			<p>Reach out while the conversation is still warm.</p>
		</div>
	`, leadEmail, leadPhone, conversationId)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send lead alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Lead alert sent to %s\n", toEmail)
	return nil
}
