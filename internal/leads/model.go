package leads

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Submission is a lead posted by the funnel form. Every field is optional.
type Submission struct {
	Name      Value `json:"name"`
	Email     Value `json:"email"`
	Phone     Value `json:"phone"`
	LeadType  Value `json:"lead_type"`
	Volume    Value `json:"volume"`
	States    Value `json:"states"`
	Urgency   Value `json:"urgency"`
	FBClid    Value `json:"fbclid"`
	FBC       Value `json:"fbc"`
	FBP       Value `json:"fbp"`
	SourceURL Value `json:"source_url"`
	UserAgent Value `json:"user_agent"`
}

// DecodeSubmission reads a JSON submission. An empty body is an empty submission.
func DecodeSubmission(r io.Reader) (*Submission, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leads: read body: %w", err)
	}
	var sub Submission
	if strings.TrimSpace(string(body)) == "" {
		return &sub, nil
	}
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return &sub, nil
}

// Identity is the normalized, hashed view of a submission's personal fields.
// Hash fields are empty when the source field was empty.
type Identity struct {
	FirstName string
	LastName  string
	Phone     string

	EmailHash     string
	PhoneHash     string
	FirstNameHash string
	LastNameHash  string
}

// EventPayload is the Conversions API request body.
type EventPayload struct {
	Data []Event `json:"data"`
}

// Event is one server event.
type Event struct {
	EventName      string     `json:"event_name"`
	EventTime      int64      `json:"event_time"`
	ActionSource   string     `json:"action_source"`
	EventSourceURL string     `json:"event_source_url,omitempty"`
	UserData       UserData   `json:"user_data"`
	CustomData     CustomData `json:"custom_data"`
}

// UserData carries hashed identity, click linkage and client metadata.
type UserData struct {
	Email           []string `json:"em,omitempty"`
	Phone           []string `json:"ph,omitempty"`
	FirstName       []string `json:"fn,omitempty"`
	LastName        []string `json:"ln,omitempty"`
	FBC             string   `json:"fbc,omitempty"`
	FBP             string   `json:"fbp,omitempty"`
	ClientUserAgent string   `json:"client_user_agent,omitempty"`
	ClientIPAddress string   `json:"client_ip_address,omitempty"`
}

// CustomData passes lead qualification fields through unhashed.
type CustomData struct {
	LeadType json.RawMessage `json:"lead_type,omitempty"`
	Volume   json.RawMessage `json:"volume,omitempty"`
	States   json.RawMessage `json:"states,omitempty"`
	Urgency  json.RawMessage `json:"urgency,omitempty"`
}

// Notification is the unhashed copy of a lead sent to the operator webhook.
type Notification struct {
	Event     string           `json:"event"`
	Timestamp string           `json:"timestamp"`
	Lead      NotificationLead `json:"lead"`
}

// NotificationLead renders absent fields as "".
type NotificationLead struct {
	Name      json.RawMessage `json:"name"`
	Email     json.RawMessage `json:"email"`
	Phone     json.RawMessage `json:"phone"`
	LeadType  json.RawMessage `json:"lead_type"`
	Volume    json.RawMessage `json:"volume"`
	States    json.RawMessage `json:"states"`
	Urgency   json.RawMessage `json:"urgency"`
	SourceURL json.RawMessage `json:"source_url"`
	FBClid    json.RawMessage `json:"fbclid"`
	IP        string          `json:"ip"`
}
