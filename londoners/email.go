package londoners

import (
	"fmt"
	"net/url"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional mail through SendGrid.
type EmailService interface {
	SendContactMessage(name, email, subject, message string) error
	SendReviewRequest(reservation *ReservationRecord) error
}

// NewEmailService creates new email service. It fails if the API key does
// not look like a SendGrid key.
func NewEmailService(settings *Settings) (EmailService, error) {
	if err := settings.CheckSendGridAPIKey(); err != nil {
		return nil, err
	}
	return &emailService{
		client:      sendgrid.NewSendClient(settings.SendGridAPIKey),
		fromName:    settings.EmailFromName,
		fromAddress: settings.EmailFromAddress,
		reviewURL:   settings.ReviewFormURL}, nil
}

type emailService struct {
	client      *sendgrid.Client
	fromName    string
	fromAddress string
	reviewURL   string
}

func (service *emailService) send(
	toName, toAddress, subject, html string) error {
	from := mail.NewEmail(service.fromName, service.fromAddress)
	to := mail.NewEmail(toName, toAddress)
	message := mail.NewSingleEmail(from, subject, to, "", html)
	response, err := service.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf(`failed to send email: %d "%s"`,
			response.StatusCode, response.Body)
	}
	return nil
}

func (service *emailService) SendContactMessage(
	name, email, subject, message string) error {
	html := fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px;">
			<h2>New contact form message</h2>
			<p><strong>From:</strong> %s (%s)</p>
			<p><strong>Subject:</strong> %s</p>
			<p>%s</p>
		</div>`,
		name, email, subject, message)
	return service.send(
		service.fromName, service.fromAddress,
		fmt.Sprintf("Contact form: %s", subject), html)
}

func (service *emailService) SendReviewRequest(
	reservation *ReservationRecord) error {
	link := fmt.Sprintf("%s?listing_id=%s&listing_title=%s&guest_id=%s",
		service.reviewURL,
		url.QueryEscape(reservation.ListingID),
		url.QueryEscape(reservation.ListingTitle),
		url.QueryEscape(reservation.GuestID))
	confirmation := ""
	if reservation.ConfirmationCode != nil {
		confirmation = fmt.Sprintf(
			`<p style="font-size: 14px; color: #666;">Your confirmation code:
				<strong>%s</strong></p>`,
			*reservation.ConfirmationCode)
	}
	html := fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px;">
			<h1>How Was Your Stay?</h1>
			<p>Dear %s %s,</p>
			<p>Thank you for staying with us! We hope you had a wonderful
				experience at <strong>%s</strong>.</p>
			<p>We would love to hear about your stay.</p>
			<p><a href="%s">Rate Your Stay</a></p>
			%s
			<p>Best regards,<br><strong>The %s Team</strong></p>
		</div>`,
		reservation.GuestFirstName, reservation.GuestLastName,
		reservation.ListingTitle, link, confirmation, service.fromName)
	return service.send(
		fmt.Sprintf("%s %s",
			reservation.GuestFirstName, reservation.GuestLastName),
		reservation.GuestEmail,
		"How was your stay? Share your experience",
		html)
}
