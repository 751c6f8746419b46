package leads

import (
	"net/http"
	"strings"
	"time"
)

const (
	eventNameLead       = "Lead"
	actionSourceWebsite = "website"
	notificationEvent   = "new_lead"

	isoMillis = "2006-01-02T15:04:05.000Z"
)

// BuildEvent assembles the single-event Conversions API payload. Empty fields
// are left zero so they are omitted from the JSON.
func BuildEvent(sub *Submission, clientIP string, now time.Time) EventPayload {
	id := Normalize(sub)

	user := UserData{
		FBC:             ClickID(sub.FBC.String(), sub.FBClid.String(), now),
		FBP:             sub.FBP.String(),
		ClientUserAgent: sub.UserAgent.String(),
		ClientIPAddress: clientIP,
	}
	user.Email = hashList(id.EmailHash)
	user.Phone = hashList(id.PhoneHash)
	user.FirstName = hashList(id.FirstNameHash)
	user.LastName = hashList(id.LastNameHash)

	return EventPayload{
		Data: []Event{{
			EventName:      eventNameLead,
			EventTime:      now.Unix(),
			ActionSource:   actionSourceWebsite,
			EventSourceURL: sub.SourceURL.String(),
			UserData:       user,
			CustomData: CustomData{
				LeadType: sub.LeadType.JSON(),
				Volume:   sub.Volume.JSON(),
				States:   sub.States.JSON(),
				Urgency:  sub.Urgency.JSON(),
			},
		}},
	}
}

// BuildNotification renders the unhashed webhook copy of a submission.
func BuildNotification(sub *Submission, clientIP string, now time.Time) Notification {
	return Notification{
		Event:     notificationEvent,
		Timestamp: now.UTC().Format(isoMillis),
		Lead: NotificationLead{
			Name:      sub.Name.JSONOrEmpty(),
			Email:     sub.Email.JSONOrEmpty(),
			Phone:     sub.Phone.JSONOrEmpty(),
			LeadType:  sub.LeadType.JSONOrEmpty(),
			Volume:    sub.Volume.JSONOrEmpty(),
			States:    sub.States.JSONOrEmpty(),
			Urgency:   sub.Urgency.JSONOrEmpty(),
			SourceURL: sub.SourceURL.JSONOrEmpty(),
			FBClid:    sub.FBClid.JSONOrEmpty(),
			IP:        clientIP,
		},
	}
}

// ClientIP reads the caller address from X-Forwarded-For, then X-Real-IP.
// Repeated X-Forwarded-For lines are joined in arrival order.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(strings.Join(r.Header.Values("X-Forwarded-For"), ", ")); ip != "" {
		return ip
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

func hashList(digest string) []string {
	if digest == "" {
		return nil
	}
	return []string{digest}
}
