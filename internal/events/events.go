// Package events defines the routing keys and payloads published when a
// job is created or an application is submitted.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Routing keys on the topic exchange.
const (
	RKApplicationSubmitted = "application.submitted"
	RKJobCreated           = "job.created"
)

// ErrMalformed marks a payload that cannot be decoded. Redelivering it
// would fail again.
var ErrMalformed = errors.New("malformed event payload")

// Audiences of an ApplicationSubmitted message. An empty Audience mails
// both parties.
const (
	AudienceApplicant = "applicant"
	AudienceEmployer  = "employer"
)

// ApplicationSubmitted carries what both notification emails need, so the
// consumer never reads the store.
type ApplicationSubmitted struct {
	Audience       string    `json:"audience,omitempty"`
	JobID          string    `json:"jobId"`
	JobTitle       string    `json:"jobTitle"`
	Company        string    `json:"company"`
	ApplicantName  string    `json:"applicantName"`
	ApplicantEmail string    `json:"applicantEmail"`
	EmployerName   string    `json:"employerName,omitempty"`
	EmployerEmail  string    `json:"employerEmail,omitempty"`
	AppliedAt      time.Time `json:"appliedAt"`
}

// JobCreated is sent to the employer who posted the job.
type JobCreated struct {
	JobID         string `json:"jobId"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	Location      string `json:"location"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	EmployerName  string `json:"employerName"`
	EmployerEmail string `json:"employerEmail"`
}

// Event is a payload waiting to be published under Key.
type Event struct {
	Key     string
	Payload any
}

// Split fans an event out into the messages to publish. An application
// becomes one message per recipient so that each mail is acked or
// dead-lettered on its own. Other events pass through unchanged.
func Split(ev Event) []Event {
	app, ok := ev.Payload.(ApplicationSubmitted)
	if !ok || app.Audience != "" {
		return []Event{ev}
	}
	forApplicant := app
	forApplicant.Audience = AudienceApplicant
	out := []Event{{Key: ev.Key, Payload: forApplicant}}
	if app.EmployerEmail != "" {
		forEmployer := app
		forEmployer.Audience = AudienceEmployer
		out = append(out, Event{Key: ev.Key, Payload: forEmployer})
	}
	return out
}

// Decode unmarshals a payload, wrapping failures in ErrMalformed.
func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return t, nil
}
