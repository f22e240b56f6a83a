package events

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	ev, err := Decode[JobCreated]([]byte(`{"jobId":"j1","title":"Go Dev","employerEmail":"e@x.io"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.JobID != "j1" || ev.Title != "Go Dev" || ev.EmployerEmail != "e@x.io" {
		t.Errorf("unexpected event %+v", ev)
	}

	if _, err := Decode[JobCreated]([]byte(`{not json`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	app := ApplicationSubmitted{JobID: "j1", ApplicantEmail: "sam@x.io", EmployerEmail: "eve@x.io"}

	tests := []struct {
		name string
		in   Event
		want []string
	}{
		{"both parties", Event{Key: RKApplicationSubmitted, Payload: app}, []string{AudienceApplicant, AudienceEmployer}},
		{"no employer", Event{Key: RKApplicationSubmitted, Payload: ApplicationSubmitted{ApplicantEmail: "sam@x.io"}}, []string{AudienceApplicant}},
		{"already split", Event{Key: RKApplicationSubmitted, Payload: ApplicationSubmitted{Audience: AudienceEmployer}}, []string{AudienceEmployer}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Split(tt.in)
			if len(out) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(out), len(tt.want))
			}
			for i, ev := range out {
				p := ev.Payload.(ApplicationSubmitted)
				if ev.Key != RKApplicationSubmitted || p.Audience != tt.want[i] {
					t.Errorf("event %d = %s/%q, want audience %q", i, ev.Key, p.Audience, tt.want[i])
				}
			}
		})
	}

	job := Event{Key: RKJobCreated, Payload: JobCreated{JobID: "j1"}}
	if out := Split(job); len(out) != 1 || out[0].Key != RKJobCreated {
		t.Errorf("job event split into %v", out)
	}
}
