package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

// Message is a single outgoing email
type Message struct {
	To      string
	Subject string
	HTML    string
}

var inviteTemplate = template.Must(template.New("invite").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>You've been invited!</h2>
  <p>You have been invited to join the trip <strong>{{.TripName}}</strong>.</p>
  {{if .Link}}
  <p>Click the button below to join:</p>
  <a href="{{.Link}}" style="background-color: #2563eb; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block; margin: 20px 0;">Join Trip</a>
  <p>Or copy and paste this link in your browser:</p>
  <p>{{.Link}}</p>
  {{else}}
  <p>You have been added as a member and can find it in your trip list.</p>
  {{end}}
</div>
`))

// InviteMessage builds the trip invitation email. An empty link means the
// recipient was already added and the mail is informational.
func InviteMessage(to, tripName, link string) (Message, error) {
	var buf bytes.Buffer
	err := inviteTemplate.Execute(&buf, struct {
		TripName string
		Link     string
	}{tripName, link})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render invite email: %w", err)
	}

	return Message{
		To:      to,
		Subject: "Invitation to join trip: " + tripName,
		HTML:    buf.String(),
	}, nil
}
